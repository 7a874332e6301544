package reports

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// WriteOrdersCSV streams the order book as a spreadsheet export.
func (s *Service) WriteOrdersCSV(ctx context.Context, w io.Writer) error {
	list, err := s.orders.List(ctx)
	if err != nil {
		return err
	}

	streamer := newCSVStreamer(w)
	if err := streamer.writeComment("# Report: Orders"); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Exported: %s | Rows: %d",
		time.Now().UTC().Format(time.RFC3339), len(list))); err != nil {
		return err
	}
	header := []string{
		"Order ID", "Created At", "Status", "Payment",
		"Customer", "Phone", "Address",
		"Product", "Size", "Color", "Quantity",
		"Unit Price", "Shipping Fee", "Total",
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, o := range list {
		row := []string{
			o.ID,
			o.CreatedAt.UTC().Format(time.RFC3339),
			string(o.Status),
			string(o.Payment),
			o.Customer.Name,
			o.Customer.Phone,
			o.Customer.Address,
			o.Product.Name,
			o.Product.Size,
			o.Product.Color,
			strconv.Itoa(o.Quantity),
			strconv.FormatInt(o.UnitPrice, 10),
			strconv.FormatInt(o.ShippingFee, 10),
			strconv.FormatInt(o.Total, 10),
		}
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Close()
}
