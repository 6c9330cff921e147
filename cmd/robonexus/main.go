// cmd/robonexus/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"robonexus_go/internal/config"
	"robonexus_go/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "robonexus",
	Short: "Robo Nexus site with the liquid text loading screen",
	Long: `Opens the Robo Nexus page in a window. A liquid text loading screen plays first
and hands over to the page content when it finishes, is skipped, or times out.

Settings come from flags, ROBONEXUS_* environment variables and an optional
config file (TOML, YAML or JSON).`,
	RunE: run,
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.String("config", "", "配置文件路径")
	fs.Int("width", 1280, "窗口宽度")
	fs.Int("height", 720, "窗口高度")
	fs.String("text", "", "加载画面文字")
	fs.Duration("max-duration", 0, "加载画面最长时间，例如 10s")
	fs.String("log-level", "info", "日志级别: debug|info|warn|error")
	fs.Bool("debug", false, "打开诊断面板并输出 debug 日志")
}

func run(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	page, err := ui.NewPage(ui.Config{
		Loading:     cfg.Loading,
		HeroText:    cfg.Loading.Render.Text,
		Subtitle:    cfg.Subtitle,
		ContactURL:  cfg.Contact,
		ShowOverlay: cfg.Debug,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("初始化页面失败: %w", err)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetTPS(60)

	logger.Info("starting", "window", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height),
		"text", cfg.Loading.Render.Text, "max_duration", cfg.Loading.MaxDuration)
	return ebiten.RunGame(page)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
