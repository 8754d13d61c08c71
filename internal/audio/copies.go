// Package audio implements the personalized voice-note pipeline: script
// generation from per-element copy templates, text-to-speech synthesis,
// storage upload and automation hand-off.
package audio

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CopyLibrary holds the per-element copy fragments and selects the right
// script template for a lead.
type CopyLibrary struct {
	Sintomas  map[string]string `yaml:"sintomas"`
	Solucoes  map[string]string `yaml:"solucoes"`
	Pronuncia map[string]string `yaml:"pronuncia"`
}

// defaultLibrary carries the campaign copy. Keys are the five element
// labels the quiz produces.
var defaultLibrary = CopyLibrary{
	Sintomas: map[string]string{
		"RIM":     "dores nas costas, cansaço extremo e sensação de frio",
		"FÍGADO":  "tensão muscular, irritabilidade e rigidez no corpo",
		"BAÇO":    "digestão difícil, inchaço e peso nas pernas",
		"CORAÇÃO": "insônia, ansiedade e palpitações",
		"PULMÃO":  "respiração curta, resfriados frequentes e cansaço",
	},
	Solucoes: map[string]string{
		"RIM":     "fortalecer sua energia vital e recuperar a vitalidade que você perdeu",
		"FÍGADO":  "liberar toda essa tensão acumulada e voltar a ter leveza no corpo",
		"BAÇO":    "reequilibrar sua digestão e ter mais disposição no dia a dia",
		"CORAÇÃO": "acalmar sua mente, dormir bem e recuperar sua paz interior",
		"PULMÃO":  "fortalecer sua respiração e aumentar sua imunidade",
	},
	Pronuncia: map[string]string{
		"RIM":     "rim",
		"FÍGADO":  "fígado",
		"BAÇO":    "baço",
		"CORAÇÃO": "coração",
		"PULMÃO":  "pulmão",
	},
}

// LoadCopyLibrary returns the built-in copy, optionally overlaid with a
// YAML file so marketing can adjust wording without a deploy. Entries in
// the file replace the built-in value for the same element.
func LoadCopyLibrary(path string) (CopyLibrary, error) {
	library := cloneLibrary(defaultLibrary)
	if path == "" {
		return library, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return library, fmt.Errorf("read copy file: %w", err)
	}

	var override CopyLibrary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return library, fmt.Errorf("parse copy file: %w", err)
	}

	for element, text := range override.Sintomas {
		library.Sintomas[strings.ToUpper(element)] = text
	}
	for element, text := range override.Solucoes {
		library.Solucoes[strings.ToUpper(element)] = text
	}
	for element, text := range override.Pronuncia {
		library.Pronuncia[strings.ToUpper(element)] = text
	}

	return library, nil
}

// ScriptInput is what the template needs to know about a lead.
type ScriptInput struct {
	Nome      string
	Elemento  string
	IsStudent bool
}

// BuildScript renders the voice-note script for one lead. Students get the
// reactivation copy, everyone else the direct-sales copy. Unknown elements
// fall back to generic wording.
func (l CopyLibrary) BuildScript(input ScriptInput) (script, scriptType string) {
	firstName := strings.Fields(strings.TrimSpace(input.Nome))
	name := "tudo bem"
	if len(firstName) > 0 {
		name = firstName[0]
	}

	element := strings.ToUpper(strings.TrimSpace(input.Elemento))
	if element == "" {
		element = "CORAÇÃO"
	}

	spoken, ok := l.Pronuncia[element]
	if !ok {
		spoken = strings.ToLower(element)
	}
	symptoms, ok := l.Sintomas[element]
	if !ok {
		symptoms = "desconfortos e dores"
	}
	solution, ok := l.Solucoes[element]
	if !ok {
		solution = "reequilibrar sua energia"
	}

	if input.IsStudent {
		return studentScript(name, spoken, symptoms, solution), "ALUNO"
	}
	return prospectScript(name, spoken, symptoms, solution), "NÃO-ALUNO"
}

// prospectScript is the direct-sales copy for leads who never enrolled.
func prospectScript(name, element, symptoms, solution string) string {
	return fmt.Sprintf(`Oi %s, aqui é o Mestre Ye.

Eu analisei seu diagnóstico e percebi a deficiência de %s.

Sei exatamente o que você está passando com %s.

Não deve ser fácil conviver com isso todos os dias.

Mas a boa notícia é que eu sei como %s.

E é exatamente isso que você vai alcançar ao garantir o SUPER COMBO Vitalício hoje.

Essa oferta é histórica! Eu nunca fiz nada igual.

%s, essa é a última turma. É a sua chance. Não espera seus sintomas piorarem pra você se arrepender.

Clica no link que eu vou te mandar agora para garantir a sua vaga antes que seja tarde.

A minha equipe tá querendo fechar as inscrições em breve, porque estamos chegando no nosso limite de alunos.

Posso contar com você na nossa turma?`, name, element, symptoms, solution, name)
}

// studentScript is the reactivation copy for current and former students.
func studentScript(name, element, symptoms, solution string) string {
	return fmt.Sprintf(`Oi %s, aqui é o Mestre Ye.

Como você já confiou no meu trabalho no passado, decidi dedicar um tempo para analisar seu diagnóstico hoje e notei alguns sinais de desequilíbrio em %s.

Provavelmente você tem sentido %s.

E sei exatamente como %s, porque você já viu meu método funcionar antes.

%s, preparei uma condição exclusiva para alunos e ex-alunos aproveitarem o SUPER COMBO VITALÍCIO.

É a mesma transformação que você já conhece, só que agora com acesso PERMANENTE a tudo que você precisa para manter os resultados para sempre.

Mas preciso te avisar: essa é a última turma com esse pacote tão completo e vitalício.

Depois disso, não vai ter mais essa condição.

Se faz sentido pra você garantir esse acesso agora, clica no link que vou te mandar.

A minha equipe tá fechando as vagas em breve porque já estamos no limite.

Posso contar com você nessa turma?`, name, element, symptoms, solution, name)
}

func cloneLibrary(src CopyLibrary) CopyLibrary {
	clone := CopyLibrary{
		Sintomas:  make(map[string]string, len(src.Sintomas)),
		Solucoes:  make(map[string]string, len(src.Solucoes)),
		Pronuncia: make(map[string]string, len(src.Pronuncia)),
	}
	for k, v := range src.Sintomas {
		clone.Sintomas[k] = v
	}
	for k, v := range src.Solucoes {
		clone.Solucoes[k] = v
	}
	for k, v := range src.Pronuncia {
		clone.Pronuncia[k] = v
	}
	return clone
}
