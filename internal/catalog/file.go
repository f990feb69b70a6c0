package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/drstein77/shopbot/internal/compress"
	"github.com/drstein77/shopbot/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

var csvHeader = []string{"id", "name", "price"}

type fileProduct struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type fileCatalog struct {
	Products []fileProduct `yaml:"products"`
}

// LoadFile reads products from a .yaml/.yml, .csv, .zip or .tar file.
// Archives must contain a CSV entry.
func LoadFile(path string) ([]models.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".csv":
		return ReadCSV(f)
	case ".zip":
		zr, err := compress.NewZipReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zip catalog: %w", err)
		}
		defer zr.Close()
		return ReadCSV(zr)
	case ".tar":
		tr, err := compress.NewTarReader(f)
		if err != nil {
			return nil, fmt.Errorf("open tar catalog: %w", err)
		}
		defer tr.Close()
		return ReadCSV(tr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadYAML decodes a document of the form `products: [{id, name, price}]`.
func ReadYAML(r io.Reader) ([]models.Product, error) {
	var doc fileCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}

	products := make([]models.Product, 0, len(doc.Products))
	for _, fp := range doc.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(fp.Price))
		if err != nil {
			return nil, fmt.Errorf("%w: product %d price %q", ErrInvalidProduct, fp.ID, fp.Price)
		}
		products = append(products, models.Product{ID: fp.ID, Name: fp.Name, Price: price})
	}
	return products, nil
}

// ReadCSV decodes rows of id,name,price. A leading header row is skipped.
func ReadCSV(r io.Reader) ([]models.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	var products []models.Product
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv catalog: %w", err)
		}
		if line == 1 && strings.EqualFold(record[0], csvHeader[0]) {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d id %q", ErrInvalidProduct, line, record[0])
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d price %q", ErrInvalidProduct, line, record[2])
		}
		products = append(products, models.Product{ID: id, Name: record[1], Price: price})
	}
	return products, nil
}

// WriteCSV writes products with a header row.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write([]string{strconv.Itoa(p.ID), p.Name, p.Price.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
