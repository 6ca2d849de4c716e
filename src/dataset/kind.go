package dataset

import (
	"fmt"
	"strings"
)

// Kind 数据集类型
type Kind string

const (
	Narcotics Kind = "narcotics" // 毒品缉获 (Entorpecentes)
	Violent   Kind = "violent"   // 暴力犯罪 (CVLI)
	Sexual    Kind = "sexual"    // 性犯罪 (Crimes Sexuais)
)

// Kinds 按菜单顺序返回全部数据集
func Kinds() []Kind {
	return []Kind{Narcotics, Violent, Sexual}
}

// DefaultPath 每类数据集的默认相对路径
func (k Kind) DefaultPath() string {
	switch k {
	case Narcotics:
		return "Entorpecente_2009-a-2024.xlsx"
	case Violent:
		return "CVLI_2009-2024.xlsx"
	case Sexual:
		return "Crimes-Sexuais_2009-a-2024.xlsx"
	default:
		return ""
	}
}

// ExpectedColumns 规范化之后图表会用到的列
func (k Kind) ExpectedColumns() []string {
	common := []string{"Municipio", "AIS", "Data", "Hora", "Dia da Semana"}
	switch k {
	case Narcotics:
		return append([]string{"Tipo de Entorpecente", "Quantidade (Kg)"}, common...)
	case Violent:
		return append([]string{"Meio Empregado", "Natureza", "Genero", "Raca da Vitima", "Idade da Vitima", "Escolaridade da Vitima"}, common...)
	case Sexual:
		return append([]string{"Genero", "Raca da Vitima", "Idade da Vitima", "Escolaridade da Vitima"}, common...)
	default:
		return nil
	}
}

// Label 用于日志和图表标题
func (k Kind) Label() string {
	switch k {
	case Narcotics:
		return "entorpecentes"
	case Violent:
		return "crimes violentos"
	case Sexual:
		return "crimes sexuais"
	default:
		return string(k)
	}
}

// ParseKind 接受英文键或葡萄牙语名称
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "narcotics", "entorpecentes", "entorpecente":
		return Narcotics, nil
	case "violent", "cvli", "crimes-violentos", "crimes violentos":
		return Violent, nil
	case "sexual", "crimes-sexuais", "crimes sexuais":
		return Sexual, nil
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}
