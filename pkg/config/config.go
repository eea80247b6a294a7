// Package config 管理模板匹配的运行配置
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultCoarseThreshold = 0.8
	DefaultVerifyThreshold = 0.9
	DefaultOutputDir       = "template_matches"
	DefaultConfigFile      = "templatematch.yaml"
)

// 环境变量名
const (
	EnvReferencePath   = "TEMPLATEMATCH_REFERENCE"
	EnvTemplatePath    = "TEMPLATEMATCH_TEMPLATE"
	EnvCoarseThreshold = "TEMPLATEMATCH_COARSE_THRESHOLD"
	EnvVerifyThreshold = "TEMPLATEMATCH_VERIFY_THRESHOLD"
	EnvOutputDir       = "TEMPLATEMATCH_OUTPUT_DIR"
	EnvLabel           = "TEMPLATEMATCH_LABEL"
)

// Config 单次匹配运行的配置
type Config struct {
	// ReferencePath 原图路径
	ReferencePath string `yaml:"reference_path"`
	// TemplatePath 模板图路径
	TemplatePath string `yaml:"template_path"`
	// CoarseThreshold 粗匹配最低置信度
	CoarseThreshold float64 `yaml:"coarse_threshold"`
	// VerifyThreshold 裁剪区域复核最低置信度
	VerifyThreshold float64 `yaml:"verify_threshold"`
	// OutputDir 标注结果输出目录
	OutputDir string `yaml:"output_dir"`
	// Label 是否在标注框上方绘制复核分数
	Label bool `yaml:"label"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		CoarseThreshold: DefaultCoarseThreshold,
		VerifyThreshold: DefaultVerifyThreshold,
		OutputDir:       DefaultOutputDir,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.ReferencePath == "" {
		return errors.New("缺少原图路径")
	}
	if c.TemplatePath == "" {
		return errors.New("缺少模板图路径")
	}
	if c.CoarseThreshold < -1 || c.CoarseThreshold > 1 {
		return errors.Errorf("粗匹配阈值超出范围 [-1, 1]: %v", c.CoarseThreshold)
	}
	if c.VerifyThreshold < -1 || c.VerifyThreshold > 1 {
		return errors.Errorf("复核阈值超出范围 [-1, 1]: %v", c.VerifyThreshold)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("输出目录不能为空")
	}
	return nil
}

// ApplyEnv 用 TEMPLATEMATCH_* 环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvReferencePath); ok {
		c.ReferencePath = v
	}
	if v, ok := os.LookupEnv(EnvTemplatePath); ok {
		c.TemplatePath = v
	}
	if v, ok := os.LookupEnv(EnvCoarseThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrapf(err, "解析 %s 失败", EnvCoarseThreshold)
		}
		c.CoarseThreshold = f
	}
	if v, ok := os.LookupEnv(EnvVerifyThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrapf(err, "解析 %s 失败", EnvVerifyThreshold)
		}
		c.VerifyThreshold = f
	}
	if v, ok := os.LookupEnv(EnvOutputDir); ok {
		c.OutputDir = v
	}
	if v, ok := os.LookupEnv(EnvLabel); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "解析 %s 失败", EnvLabel)
		}
		c.Label = b
	}
	return nil
}

// LoadDotEnv 加载 .env 文件到进程环境，不存在的文件直接跳过
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	var existing []string
	for _, f := range filenames {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(existing...), "加载 .env 失败")
}

// Manager 配置文件管理器
type Manager struct {
	configFile string
	mu         sync.RWMutex
}

// NewManager 使用当前目录下的 templatematch.yaml
func NewManager() *Manager {
	return &Manager{configFile: DefaultConfigFile}
}

// NewManagerWithFile 使用指定配置文件
func NewManagerWithFile(path string) *Manager {
	return &Manager{configFile: path}
}

// Load 加载配置，文件缺失时返回默认配置；
// 文件中未出现的字段保持默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return Default(), errors.Wrap(err, "读取配置文件失败")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), errors.Wrap(err, "解析配置文件失败")
	}

	return cfg, nil
}

// Save 保存配置
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.configFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "创建配置目录失败")
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "序列化配置失败")
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return errors.Wrap(err, "写入配置文件失败")
	}
	return nil
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}
