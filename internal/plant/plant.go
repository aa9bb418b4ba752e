// Package plant holds the class label table and the per-plant metadata
// that accompanies the trained artifacts.
package plant

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Labels is the ordered class-label table: the canonical mapping from a
// classifier's numeric output to a plant name. Fixed at load time.
type Labels []string

// Name returns the label for a class index, or a stable placeholder for
// indices outside the table.
func (l Labels) Name(idx int) string {
	if idx < 0 || idx >= len(l) {
		return fmt.Sprintf("class_%d", idx)
	}
	return l[idx]
}

// LoadLabels reads one plant name per line. Blank lines and surrounding
// whitespace are ignored.
func LoadLabels(path string) (Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	defer f.Close()

	var labels Labels
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		labels = append(labels, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("read labels: %s is empty", path)
	}
	return labels, nil
}

// Save writes the label table, one name per line.
func (l Labels) Save(path string) error {
	var b strings.Builder
	for _, name := range l {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// Info describes one plant beyond its class label.
type Info struct {
	HindiName      string `json:"hindi_name,omitempty"`
	ScientificName string `json:"scientific_name,omitempty"`
	Family         string `json:"family,omitempty"`
	Uses           string `json:"uses,omitempty"`
	PartsUsed      string `json:"parts_used,omitempty"`
}

// InfoTable maps plant names to their metadata.
type InfoTable map[string]Info

// LoadInfo reads a plant metadata file. A missing file yields an empty
// table rather than an error: metadata is optional enrichment.
func LoadInfo(path string) (InfoTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return InfoTable{}, nil
		}
		return nil, fmt.Errorf("read plant info: %w", err)
	}

	var table InfoTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse plant info: %w", err)
	}
	return table, nil
}

// Save writes the metadata table as indented JSON.
func (t InfoTable) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plant info: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
