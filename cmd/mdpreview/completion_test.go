package main

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell        Shell
		wantContains []string
	}{
		{
			shell: ShellBash,
			wantContains: []string{
				"_mdpreview()",
				"complete -o filenames -o bashdefault -F _mdpreview mdpreview",
				`--format|-f) COMPREPLY=($(compgen -W "html pdf" -- "${cur}")); return ;;`,
				"!*.@(md|markdown)",
				"!*.@(yaml|yml)",
			},
		},
		{
			shell: ShellZsh,
			wantContains: []string{
				"#compdef mdpreview",
				"compdef _mdpreview mdpreview",
				`'(-o --output)'{-o,--output}`,
				"--preview[write the JSON preview payload]",
				`:format:(json yaml)`,
				`'*:markdown file:_files -g "*.(md|markdown)"'`,
			},
		},
		{
			shell: ShellFish,
			wantContains: []string{
				"complete -c mdpreview -f",
				"complete -c mdpreview -n __fish_use_subcommand -a render",
				"-n '__fish_seen_subcommand_from export' -s f -l format",
				"-x -a 'html pdf'",
				"-a 'bash zsh fish'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%q) unexpected error: %v", tt.shell, err)
			}
			out := buf.String()

			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(out, cmd.Name) {
					t.Errorf("output missing command %q", cmd.Name)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(&bytes.Buffer{}, Shell("powershell"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Fatalf("GenerateCompletion() error = %v, want ErrUnsupportedShell", err)
	}
	if !strings.Contains(err.Error(), "powershell") {
		t.Errorf("error = %q, want it to name the shell", err.Error())
	}
}

func TestRunMain_Completion(t *testing.T) {
	t.Parallel()

	code, env := runCLI("", "completion")
	if code != ExitSuccess || !strings.Contains(env.stdout.String(), "Usage: mdpreview completion") {
		t.Errorf("completion without shell: code %d, stdout %q", code, env.stdout)
	}

	code, env = runCLI("", "completion", "zsh")
	if code != ExitSuccess || !strings.HasPrefix(env.stdout.String(), "#compdef mdpreview") {
		t.Errorf("completion zsh: code %d, stdout %q", code, env.stdout)
	}

	code, _ = runCLI("", "completion", "tcsh")
	if code != ExitUsage {
		t.Errorf("completion tcsh: code %d, want %d", code, ExitUsage)
	}
}

func TestGetCommands(t *testing.T) {
	t.Parallel()

	cmds := getCommands()
	names := commandNames(cmds)
	for name := range commands {
		if !slices.Contains(names, name) {
			t.Errorf("getCommands() missing dispatched command %q", name)
		}
	}

	flagsOf := func(cmd string) map[string]flagDef {
		for _, c := range cmds {
			if c.Name == cmd {
				m := make(map[string]flagDef, len(c.Flags))
				for _, f := range c.Flags {
					m[f.Long] = f
				}
				return m
			}
		}
		t.Fatalf("command %q not found", cmd)
		return nil
	}

	tests := []struct {
		cmd       string
		flag      string
		wantShort string
		wantType  flagType
		wantVals  []string
	}{
		{"render", "output", "o", flagDir, nil},
		{"render", "preview", "", flagBool, nil},
		{"render", "workers", "w", flagInt, nil},
		{"meta", "format", "f", flagEnum, []string{"json", "yaml"}},
		{"export", "format", "f", flagEnum, []string{"html", "pdf"}},
		{"export", "timeout", "t", flagDuration, nil},
		{"export", "style", "", flagFile, nil},
		{"export", "config", "c", flagFile, nil},
		{"watch", "asset-path", "", flagDir, nil},
		{"watch", "origin", "", flagString, nil},
		{"doctor", "format", "f", flagEnum, []string{"text", "json", "yaml"}},
	}

	for _, tt := range tests {
		f, ok := flagsOf(tt.cmd)[tt.flag]
		if !ok {
			t.Errorf("%s: flag --%s missing", tt.cmd, tt.flag)
			continue
		}
		if f.Short != tt.wantShort {
			t.Errorf("%s --%s: short = %q, want %q", tt.cmd, tt.flag, f.Short, tt.wantShort)
		}
		if f.Type != tt.wantType {
			t.Errorf("%s --%s: type = %v, want %v", tt.cmd, tt.flag, f.Type, tt.wantType)
		}
		if tt.wantVals != nil && !slices.Equal(f.Values, tt.wantVals) {
			t.Errorf("%s --%s: values = %v, want %v", tt.cmd, tt.flag, f.Values, tt.wantVals)
		}
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := zshQuote(`title ("" = it's [first]: H1)`); got != `title ("" = it'\''s \[first\]\: H1)` {
		t.Errorf("zshQuote() = %q", got)
	}
	if got := fishQuote(`it's a\b`); got != `it\'s a\\b` {
		t.Errorf("fishQuote() = %q", got)
	}
}
