package metrics

import "fmt"

// Funnel is the 3-stage conversion path: registration, completed
// diagnostic, joined group. The diagnostics-completed count is the
// canonical funnel base; the raw external CRM total is reported alongside
// for reference but never used as a denominator, since the external source
// and the local store drift apart.
type Funnel struct {
	Cadastros             int    `json:"cadastros"`
	DiagnosticosCompletos int    `json:"diagnosticos_completos"`
	Grupos                int    `json:"grupos"`
	CadastrosCRM          int    `json:"cadastros_crm"`
	TaxaDiagnostico       string `json:"taxa_diagnostico"`
	TaxaGrupo             string `json:"taxa_grupo"`
	DropOffDiagnostico    int    `json:"drop_off_diagnostico"`
	DropOffDiagnosticoPct string `json:"drop_off_diagnostico_pct"`
	DropOffGrupo          int    `json:"drop_off_grupo"`
	DropOffGrupoPct       string `json:"drop_off_grupo_pct"`
}

// buildFunnel computes stage counts and clamped conversion rates.
// diagnostics is max(loaded count, head count); crmContacts and
// groupMembers are the two external enrichment counts (0 when degraded).
func buildFunnel(diagnostics, crmContacts, groupMembers int) Funnel {
	base := diagnostics

	return Funnel{
		Cadastros:             base,
		DiagnosticosCompletos: diagnostics,
		Grupos:                groupMembers,
		CadastrosCRM:          crmContacts,
		TaxaDiagnostico:       formatRate(diagnostics, base),
		TaxaGrupo:             formatRate(groupMembers, diagnostics),
		DropOffDiagnostico:    dropOff(base, diagnostics),
		DropOffDiagnosticoPct: formatRate(dropOff(base, diagnostics), base),
		DropOffGrupo:          dropOff(diagnostics, groupMembers),
		DropOffGrupoPct:       formatRate(dropOff(diagnostics, groupMembers), base),
	}
}

// formatRate renders min(100, n/d*100) with one decimal place. A zero
// denominator yields the literal "0" so no NaN or division error can
// reach the response.
func formatRate(numerator, denominator int) string {
	if denominator == 0 {
		return "0"
	}
	rate := float64(numerator) / float64(denominator) * 100
	if rate > 100 {
		rate = 100
	}
	return fmt.Sprintf("%.1f", rate)
}

// dropOff returns how many records left the funnel between two stages,
// floored at zero because external systems can over-count.
func dropOff(denominator, numerator int) int {
	if diff := denominator - numerator; diff > 0 {
		return diff
	}
	return 0
}
