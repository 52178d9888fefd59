// Package config загружает конфигурацию conflictgen и regiond из YAML
// с переопределением через переменные окружения.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Peer именованный endpoint: регион и его URL
type Peer struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// LogConfig параметры логирования
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ParsePeers разбирает список пиров в формате "id1=url1,id2=url2"
func ParsePeers(peersStr string) ([]Peer, error) {
	if peersStr == "" {
		return []Peer{}, nil
	}

	parts := strings.Split(peersStr, ",")
	peers := make([]Peer, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid peer format: %s (expected id=url)", part)
		}

		id := strings.TrimSpace(kv[0])
		url := strings.TrimSpace(kv[1])

		if id == "" || url == "" {
			return nil, fmt.Errorf("peer ID and URL cannot be empty: %s", part)
		}

		peers = append(peers, Peer{ID: id, URL: url})
	}

	return peers, nil
}

// loadYAML читает файл поверх значений по умолчанию, уже записанных в out.
// Пустой path означает "только значения по умолчанию".
func loadYAML(path string, out any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}
