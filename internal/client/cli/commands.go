package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/client/progress"
	"github.com/dmitrijs2005/gophdrop/internal/client/registry"
	"github.com/dmitrijs2005/gophdrop/internal/common"
)

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: upload <path>")
		return common.ErrInvalidInput
	}
	path := strings.Join(args, " ")

	file, err := a.uploads.Upload(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyInFlight) {
			fmt.Fprintln(a.out, "An upload is already running, use 'cancel' or wait for it to finish")
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return err
	}

	fmt.Fprintf(a.out, "Uploading %s (%s)...\n", file.Name, progress.FormatBytes(file.Size))
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	before := a.uploads.Status()
	if before.State != models.StateInFlight {
		fmt.Fprintln(a.out, "No upload in flight")
		return nil
	}

	a.uploads.Cancel()

	after := a.uploads.Status()
	if after.State == models.StateCancelled {
		fmt.Fprintln(a.out, after.Message)
	} else {
		fmt.Fprintf(a.out, "Upload already %s\n", after.State)
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	rec := a.uploads.Status()
	if rec.ID == "" {
		fmt.Fprintln(a.out, "No uploads yet")
		return nil
	}

	fmt.Fprintf(a.out, "%s: %s\n", rec.FileName, rec.State)
	if rec.Message != "" {
		fmt.Fprintln(a.out, rec.Message)
	}
	if rec.TotalBytes > 0 {
		percent := int(rec.BytesSent * 100 / rec.TotalBytes)
		fmt.Fprintf(a.out, "%s of %s (%d%%)\n",
			progress.FormatBytes(rec.BytesSent), progress.FormatBytes(rec.TotalBytes), percent)
	}
	if rec.State == models.StateInFlight {
		est := a.printer.Last()
		fmt.Fprintf(a.out, "Speed %s, ETA %s, %s\n",
			progress.FormatSpeed(est.SpeedBytesPerSec), progress.FormatETA(est), elapsed(rec, time.Now()))
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	a.show(a.files.View(ctx))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	v := a.files.Refresh(ctx)
	a.show(v)
	return v.RemoteErr
}

func (a *App) show(v registry.View) {
	a.mu.Lock()
	a.lastView = v
	a.mu.Unlock()

	renderView(a.out, v)
}

// Delete accepts a 1-based position in the last rendered list, or a key.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <n|key>")
		return common.ErrInvalidInput
	}

	key := a.resolveKey(args[0])
	res, err := a.files.Delete(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintf(a.out, "No such file: %s\n", args[0])
		} else {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return err
	}

	fmt.Fprintln(a.out, res.Status)
	return res.RemoteErr
}

func (a *App) resolveKey(arg string) string {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 1 || n > len(a.lastView.Entries) {
		return arg
	}
	return a.lastView.Entries[n-1].Key
}
