package linear

// Option は PolynomialRegression を設定する関数
type Option func(*PolynomialRegression)

// WithDegree sets the polynomial order (the number of columns minus one).
func WithDegree(degree int) Option {
	return func(p *PolynomialRegression) {
		p.Degree = degree
	}
}
