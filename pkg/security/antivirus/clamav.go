package antivirus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
)

// ClamAVScanner streams files to a clamd daemon.
type ClamAVScanner struct {
	client  *clamd.Clamd
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

// NewClamAVScanner creates a ClamAV scanner.
// address: "localhost:3310", "tcp://localhost:3310" or a unix socket path.
func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{
		client:  clamd.NewClamd(normalizeAddress(address)),
		timeout: timeout,
	}
}

func normalizeAddress(address string) string {
	if strings.HasPrefix(address, "/") || strings.Contains(address, "://") {
		return address
	}
	return "tcp://" + address
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) Available(ctx context.Context) bool {
	return c.client.Ping() == nil
}

// Scan fails closed: any transport error is reported as infected.
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	abort := make(chan bool, 1)
	responses, err := c.client.ScanStream(data, abort)
	if err != nil {
		result.Infected = true
		result.Error = fmt.Errorf("clamd scan of %s: %w", filename, err)
		return result
	}

	for {
		select {
		case <-ctx.Done():
			abort <- true
			result.Infected = true
			result.Error = ctx.Err()
			return result
		case r, ok := <-responses:
			if !ok {
				return result
			}
			switch r.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				result.Infected = true
				result.ThreatName = r.Description
			default:
				result.Infected = true
				result.Error = errors.New("clamd: " + r.Description)
			}
		}
	}
}
