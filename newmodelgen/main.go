// newmodelgen derives the creation type of GORM models.
//
//	//go:generate go run github.com/donutnomad/gormskipper/newmodelgen -struct Cake
//
// For every struct it writes <Type>NewModel (the struct without its primary key),
// a positional constructor, <Type>Columns and the skipper.Model methods into
// <file>_newmodel.go next to the first struct.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/gormskipper/internal/gormparse"
	"github.com/donutnomad/gormskipper/internal/logger"
	"github.com/donutnomad/gormskipper/internal/structparse"
	"github.com/donutnomad/gormskipper/internal/utils"
	"github.com/donutnomad/gormskipper/lib/skipper/schema"
	"github.com/donutnomad/gormskipper/newmodelgen/generator"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type config struct {
	dir       string
	structs   []string
	outputDir string
	condition bool
}

func main() {
	var dir = flag.String("dir", ".", "目录路径")
	var structNames = flag.String("struct", "", "结构体名称,多个使用逗号分隔")
	var outputDir = flag.String("out", "", "输出目录路径,支持$PROJECT_ROOT变量")
	var condition = flag.Bool("condition", false, "同时为原结构体生成 Get/Set 与 ToAllCondition")
	var debug = flag.Bool("debug", false, "输出调试日志")
	flag.Parse()

	if err := logger.Init(*debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config{
		dir:       *dir,
		structs:   splitNames(*structNames),
		outputDir: *outputDir,
		condition: *condition,
	}
	outputFile, err := run(cfg)
	if err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Infof("成功生成文件: %s (包含 %d 个结构体)", outputFile, len(cfg.structs))
}

func splitNames(s string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(s, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})))
}

// run 解析全部结构体后一次性写出, 任一结构体失败时不写任何文件
func run(cfg config) (string, error) {
	if len(cfg.structs) == 0 {
		return "", errors.New("请指定结构体名称,使用 -struct 参数")
	}

	var records []schema.RecordDescriptor
	var firstFile, pkgName string
	for _, name := range cfg.structs {
		file, err := structparse.FindType(cfg.dir, name)
		if err != nil {
			return "", err
		}
		logger.Debugw("found type", "type", name, "file", file)

		info, err := structparse.ParseType(file, name)
		if err != nil {
			return "", errors.Wrapf(err, "解析结构体 %s 失败", name)
		}
		record, err := gormparse.ParseGormModel(info)
		if err != nil {
			return "", errors.Wrapf(err, "解析模型 %s 失败", name)
		}
		if record.Kind != schema.KindStruct {
			return "", &schema.UnsupportedShapeError{TypeName: name, Kind: record.Kind}
		}
		logger.Debugf("record %s:\n%s", name, spew.Sdump(record))

		records = append(records, record)
		if firstFile == "" {
			firstFile, pkgName = file, record.PackageName
		}
	}

	code, err := generator.Generate(pkgName, records, generator.Options{Condition: cfg.condition})
	if err != nil {
		return "", err
	}

	outputFile, err := outputPath(firstFile, cfg.outputDir)
	if err != nil {
		return "", err
	}
	if err := utils.WriteFormat(outputFile, code); err != nil {
		return "", errors.Wrapf(err, "写入 %s 失败", outputFile)
	}
	return outputFile, nil
}

// outputPath Cake 声明在 cake.go 中时输出 cake_newmodel.go
func outputPath(sourceFile, outputDir string) (string, error) {
	fileName := strings.TrimSuffix(filepath.Base(sourceFile), ".go") + structparse.GeneratedSuffix
	if outputDir == "" {
		return filepath.Join(filepath.Dir(sourceFile), fileName), nil
	}
	dir, err := resolveOutputDir(outputDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// resolveOutputDir 解析输出目录，支持$PROJECT_ROOT变量
func resolveOutputDir(outputDir string) (string, error) {
	if strings.Contains(outputDir, "$PROJECT_ROOT") {
		projectRoot, err := findProjectRoot(".")
		if err != nil {
			return "", errors.Wrap(err, "查找项目根目录失败")
		}
		outputDir = strings.ReplaceAll(outputDir, "$PROJECT_ROOT", projectRoot)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "创建输出目录失败")
	}
	return outputDir, nil
}

// findProjectRoot 向上递归查找包含go.mod的目录
func findProjectRoot(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", errors.New("未找到包含go.mod的目录")
		}
		currentDir = parentDir
	}
}
