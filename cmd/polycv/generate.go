package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/polycv/datasets"
	"github.com/YuminosukeSato/polycv/pkg/log"
)

type generateOptions struct {
	cfg    datasets.Config
	output string
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{cfg: datasets.Config{Coeffs: datasets.CubicCoeffs}}

	cmd := &cobra.Command{
		Use:   "generate -o data.csv",
		Short: "Writes a noisy cubic dataset as x,t CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := datasets.MakePolynomial(opts.cfg)
			if err != nil {
				return err
			}
			write := func(w io.Writer) error { return datasets.WriteCSV(w, d) }
			if opts.output == "" || opts.output == "-" {
				return write(cmd.OutOrStdout())
			}
			if err := writeFile(opts.output, write); err != nil {
				return err
			}
			log.GetLogger().Info("Dataset written",
				log.SamplesKey, d.Len(),
				log.RandomSeedKey, opts.cfg.Seed,
				"path", opts.output,
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.cfg.N, "n", "", 20, "number of samples")
	cmd.Flags().Float64VarP(&opts.cfg.NoiseStd, "noise", "", 0.5, "standard deviation of the Gaussian noise")
	cmd.Flags().Uint64VarP(&opts.cfg.Seed, "seed", "x", 42, "random seed")
	cmd.Flags().Float64VarP(&opts.cfg.Low, "low", "", -1, "lower bound of x")
	cmd.Flags().Float64VarP(&opts.cfg.High, "high", "", 1, "upper bound of x")
	cmd.Flags().BoolVarP(&opts.cfg.Uniform, "uniform", "", false, "draw x uniformly at random instead of evenly spaced")
	cmd.Flags().Float64SliceVarP(&opts.cfg.Coeffs, "coeffs", "c", datasets.CubicCoeffs, "polynomial coefficients w_0,w_1,... (constant first)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty or -)")

	return cmd
}
