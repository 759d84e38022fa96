package backend

import (
	"os"
	"os/exec"
	"path/filepath"
)

const (
	simDLLName     = "IbInputSimulator.dll"
	simIncludeName = "IbInputSimulator.ahk"
)

// simDirCandidates lists the directories probed for the simulator binding
// when no explicit directory is configured. Order matters: an explicit
// override always wins, then the env var, then paths relative to the
// executable and the working directory.
func simDirCandidates(override string) []string {
	var dirs []string
	if override != "" {
		dirs = append(dirs, override)
	}
	if env := os.Getenv("WINJECT_SIM_DIR"); env != "" {
		dirs = append(dirs, env)
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs,
			filepath.Join(exeDir, "IbInputSimulator", "Binding.AHK2"),
			filepath.Join(exeDir, "IbInputSimulator"),
			exeDir,
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs,
			filepath.Join(cwd, "IbInputSimulator", "Binding.AHK2"),
			filepath.Join(cwd, "IbInputSimulator"),
			cwd,
		)
	}
	return dirs
}

// findSimDir returns the first candidate directory containing the simulator
// DLL, or "" when none is found.
func findSimDir(override string) string {
	for _, dir := range simDirCandidates(override) {
		if fileExists(filepath.Join(dir, simDLLName)) {
			return dir
		}
	}
	return ""
}

// simPaths resolves the DLL and the AHK include inside dir. The include is
// optional for the in-process path but required for the scripted one.
func simPaths(dir string) (dll, include string) {
	if dir == "" {
		return "", ""
	}
	dll = filepath.Join(dir, simDLLName)
	if fileExists(filepath.Join(dir, simIncludeName)) {
		include = filepath.Join(dir, simIncludeName)
	}
	return dll, include
}

// findAHKExe locates an AutoHotkey v2 interpreter: explicit override, env
// var, PATH, then the stock install locations.
func findAHKExe(override string) string {
	candidates := []string{override, os.Getenv("WINJECT_AHK_EXE")}
	for _, c := range candidates {
		if c != "" && fileExists(c) {
			return c
		}
	}
	for _, name := range []string{"AutoHotkey64.exe", "AutoHotkey32.exe", "AutoHotkey.exe"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	for _, p := range []string{
		`C:\Program Files\AutoHotkey\v2\AutoHotkey64.exe`,
		`C:\Program Files\AutoHotkey\v2\AutoHotkey32.exe`,
		`C:\Program Files\AutoHotkey\AutoHotkey64.exe`,
	} {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
