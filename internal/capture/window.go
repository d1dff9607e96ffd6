package capture

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// WindowInfo identifies the foreground application at capture time.
type WindowInfo struct {
	AppName string
	Title   string
}

const windowProbeTimeout = 2 * time.Second

// GetActiveWindow asks the desktop environment for the focused window.
// Failures are expected (headless session, missing tooling, denied
// permissions) and yield empty fields rather than an error.
func GetActiveWindow() WindowInfo {
	ctx, cancel := context.WithTimeout(context.Background(), windowProbeTimeout)
	defer cancel()

	switch runtime.GOOS {
	case "darwin":
		return darwinActiveWindow(ctx)
	case "linux":
		return linuxActiveWindow(ctx)
	case "windows":
		return windowsActiveWindow(ctx)
	default:
		return WindowInfo{}
	}
}

func darwinActiveWindow(ctx context.Context) WindowInfo {
	var info WindowInfo
	app, err := runProbe(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`)
	if err != nil {
		return info
	}
	info.AppName = app

	// The frontmost process may have no window, keep the app name alone.
	if title, err := runProbe(ctx, "osascript", "-e",
		`tell application "System Events" to tell (first application process whose frontmost is true) to get name of front window`); err == nil {
		info.Title = title
	}
	return info
}

func linuxActiveWindow(ctx context.Context) WindowInfo {
	var info WindowInfo
	title, err := runProbe(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return info
	}
	info.Title = title
	if app, err := runProbe(ctx, "xdotool", "getactivewindow", "getwindowclassname"); err == nil {
		info.AppName = app
	}
	return info
}

// windowsForegroundScript prints the foreground process name on the first
// line and the window title on the second.
const windowsForegroundScript = `Add-Type @"
using System;
using System.Runtime.InteropServices;
public class Fg {
  [DllImport("user32.dll")] public static extern IntPtr GetForegroundWindow();
  [DllImport("user32.dll")] public static extern int GetWindowText(IntPtr hWnd, System.Text.StringBuilder text, int count);
  [DllImport("user32.dll")] public static extern uint GetWindowThreadProcessId(IntPtr hWnd, out uint pid);
}
"@
$handle = [Fg]::GetForegroundWindow()
$sb = New-Object System.Text.StringBuilder 512
[Fg]::GetWindowText($handle, $sb, 512) | Out-Null
$procId = 0
[Fg]::GetWindowThreadProcessId($handle, [ref]$procId) | Out-Null
$proc = Get-Process -Id $procId -ErrorAction SilentlyContinue
Write-Output "$($proc.ProcessName)"
Write-Output "$($sb.ToString())"`

func windowsActiveWindow(ctx context.Context) WindowInfo {
	out, err := runProbe(ctx, "powershell", "-NoProfile", "-Command", windowsForegroundScript)
	if err != nil {
		return WindowInfo{}
	}
	lines := strings.SplitN(out, "\n", 2)
	info := WindowInfo{AppName: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		info.Title = strings.TrimSpace(lines[1])
	}
	return info
}

func runProbe(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
