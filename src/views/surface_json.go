package views

import (
	"io"

	"CrimeAnalytics/src/dataset"

	"github.com/goccy/go-json"
)

// chartDocument JSON输出的一个图表
type chartDocument struct {
	Dataset dataset.Kind `json:"dataset"`
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	XLabel  string       `json:"x_label"`
	YLabel  string       `json:"y_label"`
	Labels  []string     `json:"labels"`
	Values  []float64    `json:"values"`
	Note    string       `json:"note,omitempty"`
}

// JSONSurface 每个图表输出一行JSON
type JSONSurface struct {
	enc *json.Encoder
}

func NewJSONSurface(w io.Writer) *JSONSurface {
	return &JSONSurface{enc: json.NewEncoder(w)}
}

func (s *JSONSurface) Plot(v View, series *Series) error {
	doc := chartDocument{
		Dataset: v.Dataset,
		Key:     v.Key,
		Title:   v.Title,
		XLabel:  v.XLabel,
		YLabel:  v.YLabel,
		Labels:  []string{},
		Values:  []float64{},
	}
	if series != nil {
		if series.Len() > 0 {
			doc.Labels, doc.Values = series.Labels, series.Values
		}
		doc.Note = series.Note
	}
	return s.enc.Encode(doc)
}
