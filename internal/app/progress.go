package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/menumaker/menumaker/internal/generation"
)

// PrintProgress returns a status listener that writes each new status
// message to w as one line.
func PrintProgress(w io.Writer) generation.Option {
	var mu sync.Mutex
	var last string
	return generation.WithStatusListener(func(s generation.Status) {
		if s.Message == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if s.Message == last {
			return
		}
		last = s.Message
		fmt.Fprintln(w, s.Message)
	})
}

// PrintImageBatch writes the outcome of an image run, one line per failed item.
func PrintImageBatch(w io.Writer, batch *generation.ImageBatch) {
	if batch == nil {
		return
	}
	fmt.Fprintf(w, "Images from %s: %d succeeded, %d failed\n", batch.Source, batch.Succeeded, batch.Failed)
	for _, r := range batch.Results {
		if r.Err != nil {
			fmt.Fprintf(w, "  %s: %v\n", r.ItemName, r.Err)
		}
	}
	if batch.InlineFailed > 0 {
		fmt.Fprintf(w, "%d images could not be embedded and keep their remote URL\n", batch.InlineFailed)
	}
}
