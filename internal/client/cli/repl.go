package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = func(args ...any) { fmt.Println(args...) }

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests use a stub.
type execIface interface {
	Auctions(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	DeleteAuction(ctx context.Context, args []string) error
	NewLot(ctx context.Context) error
	AddPhoto(ctx context.Context, args []string) error
	AddVoice(ctx context.Context, args []string) error
	Media(ctx context.Context) error
	DeleteMedia(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Upload(ctx context.Context) error
	Export(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them. Handlers print
// their own errors; the loop only cares about I/O and exiting.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: auctions, use <name>, delete-auction <name>,",
				"newlot, addphoto <file>, addvoice <main|dimension|keyword> <file>,",
				"media, delete-media <id>, status, upload, export, sync, exit")

		case "auctions":
			_ = a.Auctions(ctx)

		case "use":
			_ = a.Use(ctx, args)

		case "delete-auction":
			_ = a.DeleteAuction(ctx, args)

		case "newlot":
			_ = a.NewLot(ctx)

		case "addphoto":
			_ = a.AddPhoto(ctx, args)

		case "addvoice":
			_ = a.AddVoice(ctx, args)

		case "media":
			_ = a.Media(ctx)

		case "delete-media":
			_ = a.DeleteMedia(ctx, args)

		case "status":
			_ = a.Status(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "export":
			_ = a.Export(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
