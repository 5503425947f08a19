package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Glossary 预定义术语表，命中的词条直接采用固定译文
type Glossary struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// LoadGlossary loads a glossary from a TOML file.
func LoadGlossary(path string) (*Glossary, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("glossary file does not exist: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	glossary := &Glossary{}
	if err := toml.Unmarshal(content, glossary); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file: %w", err)
	}

	if glossary.SourceLang == "" || glossary.TargetLang == "" {
		return nil, fmt.Errorf("glossary file is missing source_lang or target_lang")
	}

	return glossary, nil
}
