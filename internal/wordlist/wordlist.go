// Package wordlist loads the vocabulary content the review session
// draws new items from. Lists are YAML files in a configured directory.
package wordlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Word is one vocabulary item.
type Word struct {
	ID         string `yaml:"id"`
	Expression string `yaml:"expression"`
	Meaning    string `yaml:"meaning"`
}

// Load reads every .yml wordlist under directory. Words keep file order
// within a list; files are visited in lexical path order. A word without
// an explicit id falls back to its expression.
func Load(directory string) ([]Word, error) {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yml" && ext != ".yaml" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk wordlist directory %s: %w", directory, err)
	}
	sort.Strings(paths)

	var words []Word
	seen := make(map[string]struct{})
	for _, path := range paths {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
		}

		var list []Word
		if err := yaml.Unmarshal(contents, &list); err != nil {
			return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
		}

		for _, word := range list {
			if word.ID == "" {
				word.ID = word.Expression
			}
			if word.ID == "" {
				continue
			}
			if _, ok := seen[word.ID]; ok {
				continue
			}
			seen[word.ID] = struct{}{}
			words = append(words, word)
		}
	}

	return words, nil
}

// IDs returns the item ids of the words, in load order.
func IDs(words []Word) []string {
	ids := make([]string, 0, len(words))
	for _, word := range words {
		ids = append(ids, word.ID)
	}
	return ids
}

// ByID indexes words by item id.
func ByID(words []Word) map[string]Word {
	index := make(map[string]Word, len(words))
	for _, word := range words {
		index[word.ID] = word
	}
	return index
}
