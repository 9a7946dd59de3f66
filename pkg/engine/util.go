package engine

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/seekerror/logw"
)

// ReadStdinLines feeds a console driver's interactive player one candidate
// move at a time: it scans stdin asynchronously and publishes each non-blank
// line (trimmed) on the returned chan. The engine never reads stdin itself;
// this exists for callers like cmd/deepply's InteractiveFunc implementation,
// which otherwise has to re-trim and re-check every line it reads for an
// accidental blank (e.g. a stray Enter) before handing it to strconv.Atoi.
func ReadStdinLines(ctx context.Context) <-chan string {
	moves := make(chan string, 1)
	go func() {
		defer close(moves)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			logw.Debugf(ctx, "<< %v", line)
			moves <- line
		}
	}()
	return moves
}
