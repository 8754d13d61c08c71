package metrics

import "testing"

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name        string
		numerator   int
		denominator int
		want        string
	}{
		{"zero denominator", 5, 0, "0"},
		{"plain rate", 1, 3, "33.3"},
		{"full conversion", 10, 10, "100.0"},
		{"overshoot clamps to 100", 15, 10, "100.0"},
		{"zero numerator", 0, 10, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRate(tt.numerator, tt.denominator); got != tt.want {
				t.Errorf("formatRate(%d, %d) = %q, want %q", tt.numerator, tt.denominator, got, tt.want)
			}
		})
	}
}

func TestDropOff(t *testing.T) {
	if got := dropOff(10, 4); got != 6 {
		t.Errorf("dropOff(10, 4) = %d, want 6", got)
	}
	if got := dropOff(10, 15); got != 0 {
		t.Errorf("dropOff(10, 15) = %d, want 0 (never negative)", got)
	}
}

func TestBuildFunnel(t *testing.T) {
	funnel := buildFunnel(100, 250, 40)

	if funnel.Cadastros != 100 {
		t.Errorf("Cadastros = %d, want the diagnostics base 100", funnel.Cadastros)
	}
	if funnel.CadastrosCRM != 250 {
		t.Errorf("CadastrosCRM = %d, want raw external count 250", funnel.CadastrosCRM)
	}
	if funnel.TaxaGrupo != "40.0" {
		t.Errorf("TaxaGrupo = %q, want %q", funnel.TaxaGrupo, "40.0")
	}
	if funnel.DropOffGrupo != 60 {
		t.Errorf("DropOffGrupo = %d, want 60", funnel.DropOffGrupo)
	}
	if funnel.DropOffGrupoPct != "60.0" {
		t.Errorf("DropOffGrupoPct = %q, want %q", funnel.DropOffGrupoPct, "60.0")
	}
}

func TestBuildFunnelOvercountedGroups(t *testing.T) {
	funnel := buildFunnel(10, 0, 15)

	if funnel.TaxaGrupo != "100.0" {
		t.Errorf("TaxaGrupo = %q, want clamped %q", funnel.TaxaGrupo, "100.0")
	}
	if funnel.DropOffGrupo != 0 {
		t.Errorf("DropOffGrupo = %d, want 0", funnel.DropOffGrupo)
	}
}

func TestBuildFunnelEmpty(t *testing.T) {
	funnel := buildFunnel(0, 0, 0)

	if funnel.TaxaDiagnostico != "0" || funnel.TaxaGrupo != "0" {
		t.Errorf("empty funnel rates = %q/%q, want \"0\"/\"0\"",
			funnel.TaxaDiagnostico, funnel.TaxaGrupo)
	}
}
