package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) Auctions(ctx context.Context) error { return f.record("auctions", nil) }
func (f *fakeExec) Use(ctx context.Context, args []string) error {
	return f.record("use", args)
}
func (f *fakeExec) DeleteAuction(ctx context.Context, args []string) error {
	return f.record("delete-auction", args)
}
func (f *fakeExec) NewLot(ctx context.Context) error { return f.record("newlot", nil) }
func (f *fakeExec) AddPhoto(ctx context.Context, args []string) error {
	return f.record("addphoto", args)
}
func (f *fakeExec) AddVoice(ctx context.Context, args []string) error {
	return f.record("addvoice", args)
}
func (f *fakeExec) Media(ctx context.Context) error { return f.record("media", nil) }
func (f *fakeExec) DeleteMedia(ctx context.Context, args []string) error {
	return f.record("delete-media", args)
}
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status", nil) }
func (f *fakeExec) Upload(ctx context.Context) error { return f.record("upload", nil) }
func (f *fakeExec) Export(ctx context.Context) error { return f.record("export", nil) }
func (f *fakeExec) Sync(ctx context.Context) error   { return f.record("sync", nil) }

func TestRunREPL_DispatchesAndExits(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) {}
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.Join([]string{
		"help",
		"use Spring",
		"delete-auction Old",
		"newlot",
		"addphoto photo.jpg",
		"addvoice main note.wav",
		"media",
		"delete-media abc",
		"",
		"status",
		"upload",
		"export",
		"sync",
		"nonsense",
		"exit",
		"use Never", // after exit, must not run
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "offline" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"use", "delete-auction", "newlot", "addphoto", "addvoice", "media",
		"delete-media", "status", "upload", "export", "sync",
	}, exec.calls)

	// args reach the handlers
	assert.Equal(t, []string{"Spring"}, exec.args[0])
	assert.Equal(t, []string{"Old"}, exec.args[1])
	assert.Equal(t, []string{"main", "note.wav"}, exec.args[4])
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) {}
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("auctions\n")))
	assert.Equal(t, []string{"auctions"}, exec.calls)
}
