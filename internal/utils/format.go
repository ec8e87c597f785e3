package utils

import (
	"os"

	"github.com/donutnomad/gormskipper/internal/logger"
	"github.com/pkg/errors"
	"golang.org/x/tools/imports"
	"mvdan.cc/gofumpt/format"
)

// FormatSource runs goimports and then gofumpt over generated source.
func FormatSource(fileName string, src []byte) ([]byte, error) {
	bs, err := imports.Process(fileName, src, &imports.Options{
		Fragment:  true,
		AllErrors: true,
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		logger.Debugw("goimports failed", "file", fileName, "source", string(src))
		return nil, errors.Wrapf(err, "goimports %s", fileName)
	}
	bs, err = format.Source(bs, format.Options{ExtraRules: true})
	if err != nil {
		return nil, errors.Wrapf(err, "gofumpt %s", fileName)
	}
	return bs, nil
}

// WriteFormat formats src and writes it to fileName.
func WriteFormat(fileName string, src []byte) error {
	bs, err := FormatSource(fileName, src)
	if err != nil {
		return err
	}
	// 输出到文件中
	return os.WriteFile(fileName, bs, 0o644)
}
