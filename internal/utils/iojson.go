package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0o755)
}

func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

func WritePrettyJSON(path string, value any) error {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("pretty-print json for %q: %w", path, err)
	}
	return WriteFile(path, buffer.Bytes())
}

func WriteYAML(path string, value any) error {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode yaml for %q: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode yaml for %q: %w", path, err)
	}
	return WriteFile(path, buffer.Bytes())
}

func PrintLine(line string) {
	fmt.Println(line)
}
