package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildScript(t *testing.T) {
	library := cloneLibrary(defaultLibrary)

	tests := []struct {
		name         string
		input        ScriptInput
		wantType     string
		wantContains []string
	}{
		{
			name:     "prospect with known element",
			input:    ScriptInput{Nome: "Maria Silva", Elemento: "RIM"},
			wantType: "NÃO-ALUNO",
			wantContains: []string{
				"Oi Maria",
				"deficiência de rim",
				"dores nas costas",
				"SUPER COMBO Vitalício",
			},
		},
		{
			name:     "student gets reactivation copy",
			input:    ScriptInput{Nome: "João", Elemento: "FÍGADO", IsStudent: true},
			wantType: "ALUNO",
			wantContains: []string{
				"Oi João",
				"fígado",
				"alunos e ex-alunos",
			},
		},
		{
			name:         "empty element falls back to heart",
			input:        ScriptInput{Nome: "Ana", Elemento: ""},
			wantType:     "NÃO-ALUNO",
			wantContains: []string{"coração", "insônia"},
		},
		{
			name:         "unknown element uses generic wording",
			input:        ScriptInput{Nome: "Ana", Elemento: "VENTO"},
			wantType:     "NÃO-ALUNO",
			wantContains: []string{"vento", "desconfortos e dores", "reequilibrar sua energia"},
		},
		{
			name:         "lowercase element is normalized",
			input:        ScriptInput{Nome: "Pedro", Elemento: "baço"},
			wantType:     "NÃO-ALUNO",
			wantContains: []string{"baço", "digestão difícil"},
		},
		{
			name:         "blank name gets generic greeting",
			input:        ScriptInput{Nome: "  ", Elemento: "RIM"},
			wantType:     "NÃO-ALUNO",
			wantContains: []string{"Oi tudo bem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, scriptType := library.BuildScript(tt.input)
			if scriptType != tt.wantType {
				t.Errorf("script type = %q, want %q", scriptType, tt.wantType)
			}
			for _, fragment := range tt.wantContains {
				if !strings.Contains(script, fragment) {
					t.Errorf("script missing %q:\n%s", fragment, script)
				}
			}
		})
	}
}

func TestLoadCopyLibraryOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copies.yaml")
	content := "sintomas:\n  rim: \"sintoma customizado\"\npronuncia:\n  RIM: \"rins\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	library, err := LoadCopyLibrary(path)
	if err != nil {
		t.Fatalf("LoadCopyLibrary() error = %v", err)
	}

	if got := library.Sintomas["RIM"]; got != "sintoma customizado" {
		t.Errorf("Sintomas[RIM] = %q, want override", got)
	}
	if got := library.Pronuncia["RIM"]; got != "rins" {
		t.Errorf("Pronuncia[RIM] = %q, want override", got)
	}
	// Untouched entries keep the built-in copy.
	if got := library.Solucoes["RIM"]; got != defaultLibrary.Solucoes["RIM"] {
		t.Errorf("Solucoes[RIM] = %q, want default", got)
	}
	// The built-in library itself must not be mutated.
	if defaultLibrary.Sintomas["RIM"] == "sintoma customizado" {
		t.Error("default library was mutated by override")
	}
}

func TestLoadCopyLibraryMissingFile(t *testing.T) {
	if _, err := LoadCopyLibrary("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadCopyLibraryNoPath(t *testing.T) {
	library, err := LoadCopyLibrary("")
	if err != nil {
		t.Fatalf("LoadCopyLibrary() error = %v", err)
	}
	if len(library.Sintomas) != 5 {
		t.Errorf("Sintomas has %d entries, want 5", len(library.Sintomas))
	}
}
