// Package report renders cross-validation results as plots and CSV files.
package report

import (
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/polycv/model_selection"
	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// DefaultLogFloor は対数軸で 0 以下の損失を置き換える値
const DefaultLogFloor = 1e-12

type plotConfig struct {
	title         string
	width, height vg.Length
	logY          bool
	floor         float64
	bestOrder     int
}

// PlotOption は PlotMeanLosses を設定する関数
type PlotOption func(*plotConfig)

// WithTitle sets the plot title.
func WithTitle(title string) PlotOption {
	return func(c *plotConfig) { c.title = title }
}

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) PlotOption {
	return func(c *plotConfig) { c.width, c.height = width, height }
}

// WithLogScale は y 軸を対数にする。floor 以下の損失は floor として描く。
func WithLogScale(floor float64) PlotOption {
	return func(c *plotConfig) {
		c.logY = true
		if floor > 0 {
			c.floor = floor
		}
	}
}

// WithBestOrder は選択された次数を縦線で示す
func WithBestOrder(order int) PlotOption {
	return func(c *plotConfig) { c.bestOrder = order }
}

// PlotMeanLosses は次数ごとの平均損失（訓練・交差検証・独立テスト）を折れ線で描いて path に保存する
//
// 出力形式は拡張子（.png, .svg, .pdf など）で決まる。NaN の次数は描画しない。
func PlotMeanLosses(means model_selection.MeanLosses, path string, opts ...PlotOption) error {
	cfg := plotConfig{
		title:     "Polynomial order selection by K-fold cross-validation",
		width:     6 * vg.Inch,
		height:    4 * vg.Inch,
		floor:     DefaultLogFloor,
		bestOrder: -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = "polynomial order"
	p.Y.Label.Text = "mean squared error"
	p.Legend.Top = true
	if cfg.logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		values []float64
	}{
		{"training", means.Train},
		{"cross-validation", means.CV},
		{"independent", means.Test},
	}

	var ymin, ymax = math.Inf(1), math.Inf(-1)
	added := 0
	for i, s := range series {
		pts := points(means.Orders, s.values, cfg)
		if len(pts) == 0 {
			continue
		}
		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return errors.Wrapf(err, "report: plotting %s losses", s.name)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)
		p.Add(line, scatter)
		p.Legend.Add(s.name, line, scatter)
		added++

		for _, pt := range pts {
			ymin = math.Min(ymin, pt.Y)
			ymax = math.Max(ymax, pt.Y)
		}
	}
	if added == 0 {
		return errors.NewValueError("PlotMeanLosses", "no finite losses to plot")
	}

	if cfg.bestOrder >= 0 {
		marker := plotter.XYs{{X: float64(cfg.bestOrder), Y: ymin}, {X: float64(cfg.bestOrder), Y: ymax}}
		line, err := plotter.NewLine(marker)
		if err != nil {
			return errors.Wrap(err, "report: plotting selected order")
		}
		line.Color = color.Gray{Y: 128}
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("selected order", line)
	}

	p.X.Tick.Marker = orderTicks{}
	p.Legend.ThumbnailWidth = 0.5 * vg.Inch

	if err := p.Save(cfg.width, cfg.height, path); err != nil {
		return errors.Wrapf(err, "report: saving plot to %s", path)
	}
	return nil
}

func points(orders []int, values []float64, cfg plotConfig) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || i >= len(orders) {
			continue
		}
		if cfg.logY && v < cfg.floor {
			v = cfg.floor
		}
		pts = append(pts, plotter.XY{X: float64(orders[i]), Y: v})
	}
	return pts
}

// orderTicks は次数ごとに整数の目盛りを置く
type orderTicks struct{}

func (orderTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := int(math.Ceil(min)), int(math.Floor(max))
	step := 1
	if hi-lo > 20 {
		step = (hi - lo) / 10
	}
	var ticks []plot.Tick
	for o := lo; o <= hi; o++ {
		t := plot.Tick{Value: float64(o)}
		if (o-lo)%step == 0 {
			t.Label = strconv.Itoa(o)
		}
		ticks = append(ticks, t)
	}
	return ticks
}
