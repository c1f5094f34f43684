package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"WebTool-Platform/internal/registry"
	"WebTool-Platform/internal/schema"
)

var version = "dev"

// main 是 WebTool 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatalf("webtoold 运行失败: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "webtoold",
		Usage:   "Web Tool Platform API 服务",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（JSON 或 YAML），为空时只使用默认值与环境变量",
				EnvVars: []string{"WEBTOOL_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "启动前加载的 .env 文件，不存在时忽略",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			return loadEnvFile(c.String("env-file"))
		},
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP API 服务",
				Action: serveCommand,
			},
			{
				Name:   "list",
				Usage:  "列出全部智能体与工具",
				Action: listCommand,
			},
			{
				Name:  "run",
				Usage: "在命令行执行一次智能体或工具",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "slug", Usage: "智能体或工具的 slug", Required: true},
					&cli.StringFlag{Name: "prompt", Usage: "输入内容"},
					&cli.StringSliceFlag{Name: "context", Usage: "附加的 user_context，格式为 key=value，可重复"},
				},
				Action: runCommand,
			},
		},
	}
}

// loadEnvFile 把 .env 中的变量写入进程环境，已存在的变量不会被覆盖。
func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("加载 %s 失败: %w", path, err)
	}
	return nil
}

// configPath 在 .env 加载之后再读取一次 WEBTOOL_CONFIG。
func configPath(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return os.Getenv("WEBTOOL_CONFIG")
}

func serveCommand(c *cli.Context) error {
	rt, err := bootstrap(c.Context, configPath(c), func(*registry.Registry) bool { return true })
	if err != nil {
		return err
	}
	defer rt.Close()
	return rt.serve(c.Context)
}

func listCommand(c *cli.Context) error {
	rt, err := bootstrap(c.Context, configPath(c), func(*registry.Registry) bool { return false })
	if err != nil {
		return err
	}
	defer rt.Close()

	out := c.App.Writer
	for _, slug := range rt.registry.AgentSlugs() {
		fmt.Fprintf(out, "%s\t%s\n", registry.KindAgent, slug)
	}
	for _, slug := range rt.registry.ToolSlugs() {
		fmt.Fprintf(out, "%s\t%s\n", registry.KindTool, slug)
	}
	return nil
}

func runCommand(c *cli.Context) error {
	userContext, err := parseContext(c.StringSlice("context"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	slug := c.String("slug")
	// 工具不依赖大模型，离线时也能执行。
	rt, err := bootstrap(c.Context, configPath(c), func(reg *registry.Registry) bool {
		h, ok := reg.Resolve(slug)
		return ok && h.Kind == registry.KindAgent
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.service.Process(c.Context, slug, &schema.ProcessRequest{
		Prompt:      c.String("prompt"),
		UserContext: userContext,
	})
	rt.service.Wait()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, resp.Content)
	return nil
}

// parseContext 将 key=value 形式的参数按出现顺序转换为 user_context，
// 重复的 key 与 HTTP 请求一致，后出现的值原位替换前者。
func parseContext(pairs []string) (schema.UserContext, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ctx := make(schema.UserContext, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("无效的 context 参数 %q，应为 key=value", pair)
		}
		ctx.Set(schema.StringEntry(key, strings.TrimSpace(value)))
	}
	return ctx, nil
}
