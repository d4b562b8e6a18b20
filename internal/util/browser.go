package util

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// launcher 一种打开 URL 的方式
type launcher struct {
	name string
	args []string
}

// browserLaunchers 按平台列出候选命令，靠前的优先
func browserLaunchers(goos string) []launcher {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return []launcher{
			{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}},
			{name: "explorer"},
		}
	case "darwin":
		return []launcher{{name: "open"}}
	default:
		return []launcher{
			{name: "xdg-open"},
			{name: "sensible-browser"},
			{name: "google-chrome"},
			{name: "firefox"},
			{name: "chromium-browser"},
		}
	}
}

// OpenBrowser 用系统默认浏览器打开看板地址，依次尝试候选命令
func OpenBrowser(url string) error {
	var errs []error
	for _, l := range browserLaunchers(runtime.GOOS) {
		args := append(append([]string{}, l.args...), url)
		if err := exec.Command(l.name, args...).Start(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}
