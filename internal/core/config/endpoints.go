package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// LoadEndpoints returns the configured endpoints in file order followed by
// the inline hosts.
func LoadEndpoints(cfg NodesConfig) ([]domain.Endpoint, error) {
	var hosts []string

	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open endpoint file: %v", ErrInvalidConfig, err)
		}
		defer func() {
			_ = f.Close()
		}()

		fileHosts, err := ReadHosts(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read endpoint file: %v", ErrInvalidConfig, err)
		}
		hosts = append(hosts, fileHosts...)
	}

	for _, h := range cfg.Hosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}

	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: endpoint list is empty", ErrInvalidConfig)
	}

	endpoints := make([]domain.Endpoint, 0, len(hosts))
	for _, h := range hosts {
		endpoints = append(endpoints, domain.NewEndpoint(h))
	}
	return endpoints, nil
}

// ReadHosts parses a newline-delimited host list, skipping blank lines and
// # comments.
func ReadHosts(r io.Reader) ([]string, error) {
	var hosts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hosts, nil
}
