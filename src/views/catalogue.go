package views

import (
	"fmt"

	"CrimeAnalytics/src/dataset"
)

// View 一个图表的定义
type View struct {
	Key        string       `json:"key"`
	Dataset    dataset.Kind `json:"dataset"`
	Title      string       `json:"title"`
	XLabel     string       `json:"x_label"`
	YLabel     string       `json:"y_label"`
	Horizontal bool         `json:"horizontal"` // 横向条形图, 类别在Y轴
	Build      Builder      `json:"-"`
}

const (
	ocorrencias = "Ocorrencias"
	colData     = "Data"
	colHora     = "Hora"
	colSemana   = "Dia da Semana"
)

var (
	domingoPrimeiro = []string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}
	segundaPrimeiro = []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"}
)

// horizontal 类别在Y轴, 计数在X轴
func horizontal(kind dataset.Kind, key, title, label string, build Builder) View {
	return View{Key: key, Dataset: kind, Title: title, XLabel: ocorrencias, YLabel: label, Horizontal: true, Build: build}
}

func vertical(kind dataset.Kind, key, title, label string, build Builder) View {
	return View{Key: key, Dataset: kind, Title: title, XLabel: label, YLabel: ocorrencias, Build: build}
}

var catalogue = map[dataset.Kind][]View{
	dataset.Narcotics: {
		horizontal(dataset.Narcotics, "tipo", "Total de Apreensões por Tipo de Entorpecente", "Tipo de Entorpecente", CountBy("Tipo de Entorpecente")),
		{
			Key: "peso", Dataset: dataset.Narcotics,
			Title:  "Distribuição de Peso das Apreensões (até o percentil 99)",
			XLabel: "Peso (Kg) [escala log]", YLabel: "Frequência",
			Build: QuantityDistribution("Quantidade (Kg)", 30),
		},
		horizontal(dataset.Narcotics, "municipio", "Top 10 Municípios com Mais Apreensões de Entorpecentes", "Município", TopN("Municipio", 10)),
		horizontal(dataset.Narcotics, "ais", "Apreensões por Área Integrada de Segurança (AIS)", "AIS", CountBy("AIS")),
		vertical(dataset.Narcotics, "ano", "Apreensões por Ano", "Ano", ByYear(colData)),
		vertical(dataset.Narcotics, "mes", "Apreensões por Mês", "Mês", ByMonth(colData)),
		vertical(dataset.Narcotics, "dia_semana", "Apreensões por Dia da Semana", "Dia da Semana", ByWeekday(colSemana, domingoPrimeiro)),
		vertical(dataset.Narcotics, "hora", "Apreensões por Hora do Dia", "Hora (24h)", ByHour(colHora)),
	},
	dataset.Violent: {
		horizontal(dataset.Violent, "meio_empregado", "Distribuição dos Meios Empregados", "Meio Empregado", CountBy("Meio Empregado")),
		horizontal(dataset.Violent, "natureza", "Natureza dos Crimes Violentos", "Natureza", CountBy("Natureza")),
		vertical(dataset.Violent, "genero", "Gênero das Vítimas", "Gênero", CountBy("Genero")),
		vertical(dataset.Violent, "raca", "Raça das Vítimas", "Raça", CountBy("Raca da Vitima")),
		horizontal(dataset.Violent, "idade", "Top 10 Idades das Vítimas de Crimes Violentos", "Idade", TopN("Idade da Vitima", 10)),
		horizontal(dataset.Violent, "escolaridade", "Escolaridade das Vítimas", "Escolaridade", CountBy("Escolaridade da Vitima")),
		horizontal(dataset.Violent, "municipio", "Top 20 Municípios com Mais Crimes Violentos", "Município", TopN("Municipio", 20)),
		horizontal(dataset.Violent, "ais", "Distribuição por Áreas Integradas de Segurança (AIS)", "AIS", CountBy("AIS")),
		vertical(dataset.Violent, "ano", "Ocorrencias de Crimes por Ano", "Ano", ByYear(colData)),
		vertical(dataset.Violent, "mes", "Ocorrencias de Crimes por Mês", "Mês", ByMonth(colData)),
		vertical(dataset.Violent, "dia_semana", "Ocorrencias de Crimes por Dia da Semana", "Dia da Semana", ByWeekday(colSemana, segundaPrimeiro)),
		vertical(dataset.Violent, "hora", "Distribuição dos Crimes por Horário", "Hora do Dia", ByHour(colHora)),
	},
	dataset.Sexual: {
		vertical(dataset.Sexual, "genero", "Gênero das Vítimas de Crimes Sexuais", "Gênero", CountBy("Genero")),
		vertical(dataset.Sexual, "raca", "Raça das Vítimas de Crimes Sexuais", "Raça", CountBy("Raca da Vitima")),
		horizontal(dataset.Sexual, "idade", "Top 10 Idades das Vítimas de Crimes Sexuais", "Idade", TopN("Idade da Vitima", 10)),
		horizontal(dataset.Sexual, "escolaridade", "Escolaridade das Vítimas de Crimes Sexuais", "Escolaridade", CountBy("Escolaridade da Vitima")),
		horizontal(dataset.Sexual, "municipio", "Top 20 Municípios com Mais Crimes Sexuais", "Município", TopN("Municipio", 20)),
		horizontal(dataset.Sexual, "ais", "Distribuição de Crimes Sexuais por Áreas Integradas de Segurança (AIS)", "AIS", CountBy("AIS")),
		vertical(dataset.Sexual, "ano", "Ocorrencias de Crimes Sexuais por Ano", "Ano", ByYear(colData)),
		vertical(dataset.Sexual, "mes", "Ocorrencias de Crimes Sexuais por Mês", "Mês", ByMonth(colData)),
		vertical(dataset.Sexual, "dia_semana", "Ocorrencias de Crimes Sexuais por Dia da Semana", "Dia da Semana", ByWeekday(colSemana, segundaPrimeiro)),
		vertical(dataset.Sexual, "hora", "Distribuição dos Crimes Sexuais por Horário", "Hora do Dia", ByHour(colHora)),
	},
}

// Catalogue 返回某个数据集的全部图表, 顺序固定
func Catalogue(kind dataset.Kind) []View {
	return append([]View(nil), catalogue[kind]...)
}

// Lookup 按key查找图表
func Lookup(kind dataset.Kind, key string) (View, error) {
	for _, v := range catalogue[kind] {
		if v.Key == key {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("unknown view %q for dataset %s", key, kind)
}

// Surface 图表输出目标
type Surface interface {
	Plot(v View, s *Series) error
}

// Render 计算并输出一个图表
// 数据集为nil时返回ErrDatasetUnavailable; 没有数据时输出占位说明并返回ErrNoData
func Render(surface Surface, v View, t *dataset.Table) error {
	if t == nil {
		return fmt.Errorf("%s/%s: %w", v.Dataset, v.Key, ErrDatasetUnavailable)
	}

	s, err := v.Build(t)
	if err != nil {
		if plotErr := surface.Plot(v, &Series{Note: NoDataNote}); plotErr != nil {
			return plotErr
		}
		return fmt.Errorf("%s/%s: %w", v.Dataset, v.Key, err)
	}
	return surface.Plot(v, s)
}

// NoDataNote 没有数据时的占位说明
const NoDataNote = "Não há dados para exibir."
