package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Profile 描述模型生成参数与系统提示词，来自 TOML 配置文件。
type Profile struct {
	SystemInstruction string   `toml:"system_instruction"`
	Temperature       *float64 `toml:"temperature"`
	TopP              *float64 `toml:"top_p"`
	MaxOutputTokens   *int     `toml:"max_output_tokens"`
	HistoryLimit      int      `toml:"history_limit"`
	MaxToolRounds     int      `toml:"max_tool_rounds"`
}

type profileFile struct {
	Config Profile `toml:"config"`
}

// DefaultProfile 返回未提供配置文件时的生成参数。
func DefaultProfile() Profile {
	maxTokens := 100
	return Profile{
		SystemInstruction: "You are a seasoned Minecraft guide chatting with players in game chat. " +
			"Keep replies short and plain text, game chat lines are narrow.",
		MaxOutputTokens: &maxTokens,
		HistoryLimit:    10,
		MaxToolRounds:   5,
	}
}

// LoadProfile 从 TOML 文件加载生成参数，文件缺失时回退到默认值。
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultProfile(), nil
		}
		return Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	file := profileFile{Config: DefaultProfile()}
	if err := toml.Unmarshal(raw, &file); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	profile := file.Config
	if profile.Temperature != nil && (*profile.Temperature < 0 || *profile.Temperature > 2) {
		return Profile{}, fmt.Errorf("profile temperature out of range [0, 2]: %v", *profile.Temperature)
	}
	if profile.HistoryLimit < 1 {
		profile.HistoryLimit = 1
	}
	if profile.MaxToolRounds < 0 {
		profile.MaxToolRounds = 0
	}

	return profile, nil
}
