package processor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/airbusgeo/scene-exporter/service/log"
)

const (
	// DefaultVarianceThreshold is the cumulative ratio of variance the kept components explain
	DefaultVarianceThreshold = 0.99
	// ComponentPrefix of the names of the components: PC1, PC2...
	ComponentPrefix = "PC"
)

// Statistics of the bands of an image over its clip area
type Statistics struct {
	Bands      []string
	Means      []float64
	Covariance [][]float64 // Sample covariance matrix, in band order
}

// StatisticsComputer computes the statistics of the bands of an image
type StatisticsComputer interface {
	Statistics(ctx context.Context, img Image) (Statistics, error)
}

// PCAConfig configures the principal component analysis
type PCAConfig struct {
	Threshold   float64 // In ]0, 1]. Default: DefaultVarianceThreshold
	Standardize bool    // Divide the centered bands by their standard deviation
}

// Components projects the input bands on their principal axes:
// PCi = sum_j Vectors[i][j] * (band_j - Means[j]) / Scales[j]
type Components struct {
	Inputs    []string
	Means     []float64
	Scales    []float64
	Names     []string
	Vectors   [][]float64 // Unit eigenvectors, by decreasing variance
	Variances []float64
	Explained []float64 // Cumulative ratio of explained variance
}

// Index returns the index of the component with the given name
func (c *Components) Index(name string) (int, bool) {
	for i, n := range c.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// ComponentName returns the name of the i-th component (0-based)
func ComponentName(i int) string {
	return ComponentPrefix + strconv.Itoa(i+1)
}

// PrincipalComponents returns the image of the first principal components of img, enough to
// explain at least cfg.Threshold of the variance of its bands.
func PrincipalComponents(ctx context.Context, img Image, stats Statistics, cfg PCAConfig) (Image, error) {
	if img.Components != nil {
		return Image{}, fmt.Errorf("PrincipalComponents: image is already projected")
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultVarianceThreshold
	}
	if threshold < 0 || threshold > 1 {
		return Image{}, fmt.Errorf("PrincipalComponents: variance threshold must be in ]0, 1] (got %v)", threshold)
	}
	if err := stats.validate(img.Bands); err != nil {
		return Image{}, fmt.Errorf("PrincipalComponents.%w", err)
	}

	p := len(img.Bands)
	scales := make([]float64, p)
	matrix := make([][]float64, p)
	for i := range matrix {
		matrix[i] = append([]float64(nil), stats.Covariance[i]...)
		scales[i] = 1
	}
	if cfg.Standardize {
		for i := range scales {
			if scales[i] = math.Sqrt(stats.Covariance[i][i]); scales[i] == 0 {
				return Image{}, fmt.Errorf("PrincipalComponents: band %s is constant over the area", img.Bands[i])
			}
		}
		for i := range matrix {
			for j := range matrix[i] {
				matrix[i][j] /= scales[i] * scales[j]
			}
		}
	}

	values, vectors := eigenSymmetric(matrix)
	total := 0.0
	for i := range values {
		values[i] = math.Max(values[i], 0)
		total += values[i]
	}
	if total == 0 {
		return Image{}, fmt.Errorf("PrincipalComponents: bands have no variance over the area")
	}

	components := &Components{
		Inputs: append([]string(nil), img.Bands...),
		Means:  append([]float64(nil), stats.Means...),
		Scales: scales,
	}
	cumulative := 0.0
	for i := range values {
		cumulative += values[i] / total
		components.Names = append(components.Names, ComponentName(i))
		components.Vectors = append(components.Vectors, orient(vectors[i]))
		components.Variances = append(components.Variances, values[i])
		components.Explained = append(components.Explained, cumulative)
		if cumulative >= threshold {
			break
		}
	}

	lg := log.Logger(ctx).Sugar()
	for i, name := range components.Names {
		lg.Debugf("%s: variance %g, cumulative explained variance %.4f", name, components.Variances[i], components.Explained[i])
	}
	lg.Infof("%d principal components explain %.2f%% of the variance of [%s]", len(components.Names),
		100*components.Explained[len(components.Explained)-1], strings.Join(img.Bands, ","))

	projected := img
	projected.Bands = append([]string(nil), components.Names...)
	projected.Components = components
	return projected, nil
}

func (s Statistics) validate(bands []string) error {
	p := len(bands)
	if len(s.Bands) != p {
		return fmt.Errorf("validate: statistics of [%s], expecting [%s]", strings.Join(s.Bands, ","), strings.Join(bands, ","))
	}
	for i := range bands {
		if s.Bands[i] != bands[i] {
			return fmt.Errorf("validate: statistics of [%s], expecting [%s]", strings.Join(s.Bands, ","), strings.Join(bands, ","))
		}
	}
	if len(s.Means) != p || len(s.Covariance) != p {
		return fmt.Errorf("validate: expecting %d means and a %dx%d covariance matrix", p, p, p)
	}
	for i, row := range s.Covariance {
		if len(row) != p {
			return fmt.Errorf("validate: expecting a %dx%d covariance matrix", p, p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v-s.Covariance[j][i]) > 1e-9*(1+math.Abs(v)) {
				return fmt.Errorf("validate: covariance matrix is not a finite symmetric matrix")
			}
		}
	}
	return nil
}

// orient returns the vector with its largest coordinate (in absolute value) positive
func orient(v []float64) []float64 {
	imax := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[imax]) {
			imax = i
		}
	}
	if v[imax] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
	return v
}

// eigenSymmetric returns the eigenvalues of the symmetric matrix m by decreasing order,
// and the associated unit eigenvectors (cyclic Jacobi method). m is modified.
func eigenSymmetric(m [][]float64) ([]float64, [][]float64) {
	n := len(m)
	v := make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, n)
		v[i][i] = 1
	}

	for sweep := 0; sweep < 100; sweep++ {
		off, norm := 0.0, 0.0
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					off += m[i][j] * m[i][j]
				}
				norm += m[i][j] * m[i][j]
			}
		}
		if off <= 1e-30*norm {
			break
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if m[p][q] == 0 {
					continue
				}
				theta := (m[q][q] - m[p][p]) / (2 * m[p][q])
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				for k := 0; k < n; k++ {
					mkp, mkq := m[k][p], m[k][q]
					m[k][p] = c*mkp - s*mkq
					m[k][q] = s*mkp + c*mkq
				}
				for k := 0; k < n; k++ {
					mpk, mqk := m[p][k], m[q][k]
					m[p][k] = c*mpk - s*mqk
					m[q][k] = s*mpk + c*mqk
				}
				for k := 0; k < n; k++ {
					vkp, vkq := v[k][p], v[k][q]
					v[k][p] = c*vkp - s*vkq
					v[k][q] = s*vkp + c*vkq
				}
			}
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return m[order[i]][order[i]] > m[order[j]][order[j]] })

	values := make([]float64, n)
	vectors := make([][]float64, n)
	for i, col := range order {
		values[i] = m[col][col]
		vectors[i] = make([]float64, n)
		for k := 0; k < n; k++ {
			vectors[i][k] = v[k][col]
		}
	}
	return values, vectors
}
