package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/datasets"
	"github.com/YuminosukeSato/polycv/linear"
	"github.com/YuminosukeSato/polycv/metrics"
	"github.com/YuminosukeSato/polycv/model_selection"
	"github.com/YuminosukeSato/polycv/pkg/errors"
	"github.com/YuminosukeSato/polycv/pkg/log"
	"github.com/YuminosukeSato/polycv/preprocessing"
	"github.com/YuminosukeSato/polycv/report"
)

type runOptions struct {
	n        int
	nTest    int
	noise    float64
	seed     uint64
	maxOrder int
	folds    int
	shuffle  bool
	jobs     int

	trainCSV string
	testCSV  string

	plotPath  string
	logY      bool
	csvPath   string
	meansPath string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluates polynomial orders 0..max-order by K-fold cross-validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.n, "n", "", 20, "number of training samples to generate")
	cmd.Flags().IntVarP(&opts.nTest, "n-test", "", 100, "number of independent test samples to generate")
	cmd.Flags().Float64VarP(&opts.noise, "noise", "", 0.5, "standard deviation of the Gaussian noise")
	cmd.Flags().Uint64VarP(&opts.seed, "seed", "x", 42, "random seed for data generation and shuffling")
	cmd.Flags().IntVarP(&opts.maxOrder, "max-order", "m", 9, "highest polynomial order to evaluate")
	cmd.Flags().IntVarP(&opts.folds, "folds", "k", 5, "number of cross-validation folds")
	cmd.Flags().BoolVarP(&opts.shuffle, "shuffle", "", false, "shuffle the training rows (seeded) before fold assignment")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "parallel workers across folds (-1 for all CPUs)")
	cmd.Flags().StringVarP(&opts.trainCSV, "train-csv", "", "", "read training data (x,t) from this CSV instead of generating it")
	cmd.Flags().StringVarP(&opts.testCSV, "test-csv", "", "", "read independent test data (x,t) from this CSV instead of generating it")
	cmd.Flags().StringVarP(&opts.plotPath, "plot", "p", "", "write the order vs mean loss plot to this file (.png, .svg, .pdf)")
	cmd.Flags().BoolVarP(&opts.logY, "log-y", "", true, "use a logarithmic loss axis in the plot")
	cmd.Flags().StringVarP(&opts.csvPath, "csv", "", "", "write the per (order, fold) loss table to this CSV file")
	cmd.Flags().StringVarP(&opts.meansPath, "means-csv", "", "", "write the per-order mean losses to this CSV file")

	return cmd
}

func runEvaluate(out io.Writer, opts *runOptions) error {
	logger := log.GetLogger().With(log.ComponentKey, "cli")

	train, err := loadOrGenerate(opts.trainCSV, opts.n, opts.noise, opts.seed)
	if err != nil {
		return errors.Wrap(err, "training data")
	}
	test, err := loadOrGenerate(opts.testCSV, opts.nTest, opts.noise, opts.seed+1)
	if err != nil {
		return errors.Wrap(err, "test data")
	}

	if opts.shuffle {
		train.X, train.T, err = preprocessing.ShuffleRows(train.X, train.T, opts.seed)
		if err != nil {
			return err
		}
		logger.Info("Training rows shuffled", log.RandomSeedKey, opts.seed)
	}

	table, err := model_selection.Evaluate(train.X, train.T, test.X, test.T, opts.maxOrder, opts.folds,
		model_selection.WithNJobs(opts.jobs),
		model_selection.WithLogger(log.GetLogger()),
	)
	if err != nil {
		return err
	}
	means := table.MeanLosses()

	if err := printMeans(out, means); err != nil {
		return err
	}

	best, ok := table.BestOrder()
	if !ok {
		return errors.New("no polynomial order produced a finite cross-validation loss")
	}
	fmt.Fprintf(out, "\nselected order: %d (mean CV loss %.6g)\n", best, means.CV[best])
	if breakdown, ok := table.BreakdownOrder(); ok {
		fmt.Fprintf(out, "normal equations break down from order %d (%d failed cells)\n",
			breakdown, len(table.Failures()))
	}

	final := linear.NewPolynomialRegression(linear.WithDegree(best))
	if err := final.Fit(train.X, train.T); err != nil {
		return errors.Wrapf(err, "refitting order %d on the full training set", best)
	}
	logger.Info("Selected model refitted on the full training set",
		log.OrderKey, best,
		log.SamplesKey, train.Len(),
		"coefficients", final.Coefficients(),
	)
	fmt.Fprintf(out, "coefficients (w_0..w_%d): %v\n", best, formatCoefficients(final.Coefficients()))
	if err := printTestScores(out, logger, final, test); err != nil {
		return err
	}

	if opts.csvPath != "" {
		if err := writeFile(opts.csvPath, func(w io.Writer) error { return report.WriteLossTableCSV(w, table) }); err != nil {
			return err
		}
		logger.Info("Loss table written", "path", opts.csvPath)
	}
	if opts.meansPath != "" {
		if err := writeFile(opts.meansPath, func(w io.Writer) error { return report.WriteMeanLossesCSV(w, means) }); err != nil {
			return err
		}
		logger.Info("Mean losses written", "path", opts.meansPath)
	}
	if opts.plotPath != "" {
		plotOpts := []report.PlotOption{report.WithBestOrder(best)}
		if opts.logY {
			plotOpts = append(plotOpts, report.WithLogScale(report.DefaultLogFloor))
		}
		if err := report.PlotMeanLosses(means, opts.plotPath, plotOpts...); err != nil {
			return err
		}
		logger.Info("Plot written", "path", opts.plotPath)
	}
	return nil
}

func loadOrGenerate(path string, n int, noise float64, seed uint64) (datasets.Dataset, error) {
	if path == "" {
		return datasets.MakeCubic(n, noise, seed)
	}
	f, err := os.Open(path)
	if err != nil {
		return datasets.Dataset{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return datasets.ReadCSV(f)
}

func printMeans(out io.Writer, means model_selection.MeanLosses) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "order\ttrain\tcross-validation\tindependent\t")
	for i, order := range means.Orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", order,
			formatLoss(means.Train[i]), formatLoss(means.CV[i]), formatLoss(means.Test[i]))
	}
	return tw.Flush()
}

// printTestScores は再学習したモデルの独立テストデータに対する RMSE と R² を表示する
func printTestScores(out io.Writer, logger log.Logger, p *linear.PolynomialRegression, test datasets.Dataset) error {
	pred, err := p.Predict(test.X)
	if err != nil {
		return errors.Wrap(err, "predicting the test data")
	}
	yTrue := mat.NewVecDense(test.Len(), test.T)
	yPred := mat.NewVecDense(len(pred), pred)

	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return err
	}
	r2, err := metrics.R2Score(yTrue, yPred)
	if err != nil {
		// 定数のテストデータでは R² が定義されない
		logger.Warn("R² undefined on the test data", log.ErrAttrKey, err)
		fmt.Fprintf(out, "test RMSE: %.6g\n", rmse)
		return nil
	}
	fmt.Fprintf(out, "test RMSE: %.6g, R²: %.4f\n", rmse, r2)
	return nil
}

func formatLoss(v float64) string {
	if math.IsNaN(v) {
		return "failed"
	}
	return fmt.Sprintf("%.6g", v)
}

func formatCoefficients(w []float64) []string {
	out := make([]string, len(w))
	for i, v := range w {
		out[i] = fmt.Sprintf("%.4g", v)
	}
	return out
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()
	return write(f)
}
