package gesture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks the operator whether to go on.
type Confirmer interface {
	ConfirmContinue(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

// ConfirmContinue calls fn.
func (fn ConfirmerFunc) ConfirmContinue(ctx context.Context, prompt string) (bool, error) {
	return fn(ctx, prompt)
}

// AutoConfirm answers yes to the first n prompts and no afterwards.
// With a hand wave, n is the number of waves: the start prompt plus n-1 repeats.
func AutoConfirm(n int) Confirmer {
	var mu sync.Mutex
	left := n
	return ConfirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		mu.Lock()
		defer mu.Unlock()
		if left <= 0 {
			return false, nil
		}
		left--
		return true, nil
	})
}

// TerminalConfirmer prompts on Out and reads a line from In.
// Anything except "n" or "no" means yes, so pressing enter continues.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer

	once    sync.Once
	lines   chan string
	readErr error
}

// ConfirmContinue prints "prompt Y/n" and waits for an answer or ctx.
func (c *TerminalConfirmer) ConfirmContinue(ctx context.Context, prompt string) (bool, error) {
	c.once.Do(c.start)

	fmt.Fprintf(c.Out, "%s Y/n\n", prompt)
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				return false, c.readErr
			}
			return false, io.EOF
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "n", "no":
			return false, nil
		default:
			return true, nil
		}
	}
}

// start reads lines in the background so a pending read never blocks ctx.
func (c *TerminalConfirmer) start() {
	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(c.In)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
		c.readErr = sc.Err()
	}()
}
