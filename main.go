package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/songbook/songcache/internal/config"
	_ "github.com/songbook/songcache/internal/songparser/latex"
)

// configEnvVar 可覆盖默认配置路径，优先级低于 --config。
const configEnvVar = "SONGCACHE_CONFIG"

// 退出码：0 成功，1 运行失败，2 参数错误。
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// usageError 标记参数解析类错误，对应退出码 2。
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// execute 执行 CLI 并返回退出码，方便测试直接驱动。
func execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdErr, err.Error())
		var uerr usageError
		if errors.As(err, &uerr) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

// resolveConfigPath 按 --config、环境变量、默认文件名的顺序确定配置路径。
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(configEnvVar); env != "" {
		return env
	}
	return config.DefaultPath
}
