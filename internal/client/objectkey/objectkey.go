// Package objectkey derives remote object keys from content. The key is a
// pure function of the bytes and their owning scope, so re-uploading the same
// photo lands on the same key and the server can skip the transfer.
package objectkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// extByMime is the fixed extension table. Unknown MIME types get no
// extension rather than a guessed one.
var extByMime = map[string]string{
	"image/jpeg":  ".jpg",
	"image/png":   ".png",
	"image/webp":  ".webp",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/mpeg":  ".mp3",
	"audio/mp4":   ".m4a",
	"audio/webm":  ".weba",
}

// For returns the object key for data owned by a user/auction scope:
//
//	u/<userID>/a/<auctionID>/l/<lotID>/<sha256hex><ext>
//
// lotID may be empty for auction-level objects, dropping the l/ segment.
// No timestamps or random parts: identical bytes in the same scope always
// map to the same key.
func For(data []byte, userID, auctionID, lotID, mime string) string {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	ext := extByMime[mime]

	if lotID == "" {
		return fmt.Sprintf("u/%s/a/%s/%s%s", userID, auctionID, digest, ext)
	}
	return fmt.Sprintf("u/%s/a/%s/l/%s/%s%s", userID, auctionID, lotID, digest, ext)
}

// Ext returns the extension For would use for a MIME type, "" when unknown.
func Ext(mime string) string {
	return extByMime[mime]
}
