package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zoeyai/templatematch/internal/logger"
	"github.com/zoeyai/templatematch/pkg/config"
	"github.com/zoeyai/templatematch/pkg/pipeline"
	"github.com/zoeyai/templatematch/pkg/process"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("templatematch", flag.ContinueOnError)
	fs.SetOutput(stdout)

	var (
		referencePath   = fs.String("reference", "", "原图路径")
		templatePath    = fs.String("template", "", "模板图路径")
		coarseThreshold = fs.Float64("coarse", config.DefaultCoarseThreshold, "粗匹配最低置信度")
		verifyThreshold = fs.Float64("verify", config.DefaultVerifyThreshold, "复核最低置信度")
		outputDir       = fs.String("output", config.DefaultOutputDir, "标注结果输出目录")
		configFile      = fs.String("config", "", "YAML 配置文件 (默认读取 ./templatematch.yaml)")
		label           = fs.Bool("label", false, "在标注框上方绘制复核分数")
		showStats       = fs.Bool("stats", false, "结束时输出进程资源占用")
		logLevel        = fs.String("log-level", "INFO", "日志级别 (DEBUG/INFO/WARN/ERROR)")
		logFile         = fs.String("log-file", "", "同时把日志追加写入该文件")
		showVersion     = fs.Bool("version", false, "显示版本信息")
		showHelp        = fs.Bool("help", false, "显示帮助信息")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		printVersion(stdout)
		return 0
	}
	if *showHelp {
		printHelp(stdout)
		return 0
	}

	logger.Default().SetLevel(logger.ParseLevel(*logLevel))
	if *logFile != "" {
		if err := logger.Default().SetFile(true, *logFile); err != nil {
			fmt.Fprintf(stdout, "[WARN] %v\n", err)
		}
		defer logger.Default().Close()
	}

	// 配置优先级: 默认值 < 配置文件 < 环境变量 < 命令行参数
	manager := config.NewManager()
	if *configFile != "" {
		manager = config.NewManagerWithFile(*configFile)
		if !manager.Exists() {
			fmt.Fprintf(stdout, "[WARN] 配置文件不存在: %s\n", manager.GetConfigFile())
		}
	}
	cfg, err := manager.Load()
	if err != nil {
		fmt.Fprintf(stdout, "[WARN] 加载配置失败: %v\n", err)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stdout, "[WARN] %v\n", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return 1
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reference":
			cfg.ReferencePath = *referencePath
		case "template":
			cfg.TemplatePath = *templatePath
		case "coarse":
			cfg.CoarseThreshold = *coarseThreshold
		case "verify":
			cfg.VerifyThreshold = *verifyThreshold
		case "output":
			cfg.OutputDir = *outputDir
		case "label":
			cfg.Label = *label
		}
	})

	// 未指定路径时交互式输入
	reader := bufio.NewReader(stdin)
	if cfg.ReferencePath == "" {
		cfg.ReferencePath = prompt(reader, stdout, "Enter path of original image: ")
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = prompt(reader, stdout, "Enter path of template image: ")
	}

	result, err := pipeline.Run(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout)
	if result.Scores.HasCoarse {
		fmt.Fprintf(stdout, "模板匹配置信度: %.4f\n", result.Scores.Coarse)
	}
	fmt.Fprintln(stdout, result.Message())

	if *showStats {
		if stats, err := process.Snapshot(); err != nil {
			fmt.Fprintf(stdout, "[WARN] 获取进程统计失败: %v\n", err)
		} else {
			fmt.Fprintf(stdout, "[STATS] %s\n", stats)
		}
	}

	return 0
}

// prompt 打印提示并读取一行输入
func prompt(r *bufio.Reader, w io.Writer, msg string) string {
	fmt.Fprint(w, msg)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// printVersion 打印版本信息
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "templatematch v%s\n", Version)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "templatematch - 在原图中定位模板并保存标注结果")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "用法:")
	fmt.Fprintln(w, "  templatematch [选项]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "选项:")
	fmt.Fprintln(w, "  -reference string   原图路径 (缺省时交互输入)")
	fmt.Fprintln(w, "  -template string    模板图路径 (缺省时交互输入)")
	fmt.Fprintln(w, "  -coarse float       粗匹配最低置信度 (默认 0.8)")
	fmt.Fprintln(w, "  -verify float       复核最低置信度 (默认 0.9)")
	fmt.Fprintln(w, "  -output string      输出目录 (默认 template_matches)")
	fmt.Fprintln(w, "  -config string      YAML 配置文件")
	fmt.Fprintln(w, "  -label              在标注框上方绘制复核分数")
	fmt.Fprintln(w, "  -stats              输出进程资源占用")
	fmt.Fprintln(w, "  -log-level string   日志级别")
	fmt.Fprintln(w, "  -log-file string    同时写入的日志文件")
	fmt.Fprintln(w, "  -version            显示版本信息")
	fmt.Fprintln(w, "  -help               显示帮助信息")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "环境变量 (也可写在 .env 中):")
	fmt.Fprintln(w, "  TEMPLATEMATCH_REFERENCE, TEMPLATEMATCH_TEMPLATE, TEMPLATEMATCH_COARSE_THRESHOLD,")
	fmt.Fprintln(w, "  TEMPLATEMATCH_VERIFY_THRESHOLD, TEMPLATEMATCH_OUTPUT_DIR, TEMPLATEMATCH_LABEL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "示例:")
	fmt.Fprintln(w, "  templatematch -reference screen.png -template button.png")
}
