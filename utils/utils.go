package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/takoeight0821/rustscript/token"
	"gopkg.in/yaml.v3"
)

// SourceExt is the file extension of rustscript sources.
const SourceExt = ".rsc"

type ErrorAt struct {
	Where token.Token
	Err   error
}

func (e ErrorAt) Error() string {
	return MsgAt(e.Where, e.Err.Error())
}

// MsgAt prefixes msg with the position of where.
func MsgAt(where token.Token, msg string) string {
	if where.Kind == token.EOF {
		return fmt.Sprintf("at end: %s", msg)
	}
	return fmt.Sprintf("at %d: `%s`, %s", where.Line, where.Lexeme, msg)
}

func (e ErrorAt) Unwrap() error {
	return e.Err
}

type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Expected map[string]string
}

func ReadTestData(s []byte) []TestData {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		panic(err)
	}

	// Remove disabled test cases.
	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	data = data[:i]

	return data
}

// FindSourceFiles lists the source files under dir, sorted by path.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	return files, nil
}
