// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitforge-eda/bitforge/lib/artifact"
)

// VerifyProducts checks a build root against its result log: every
// product recorded by the run's "complete" event must still be present
// with a matching digest. Used after unpacking an archived build root
// to confirm the transfer delivered the bitstream the run produced.
func VerifyProducts(root, target string) ([]Product, error) {
	products, err := completedProducts(artifact.Path(root, target, artifact.KindResultLog))
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		recorded, err := artifact.ParseDigest(product.Digest)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", product.Path, err)
		}
		actual, err := artifact.DigestFile(filepath.Join(root, product.Path))
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", product.Path, err)
		}
		if actual != recorded {
			return nil, fmt.Errorf("product %s digest mismatch: log records %s, file is %s",
				product.Path, recorded, actual)
		}
	}
	return products, nil
}

// completedProducts returns the product list from the last "complete"
// event in a result log. A log with no such event belongs to a failed
// or interrupted run.
func completedProducts(logPath string) ([]Product, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("opening result log: %w", err)
	}
	defer file.Close()

	var products []Product
	completed := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry struct {
			Event    string    `json:"event"`
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("result log line %q: %w", scanner.Text(), err)
		}
		if entry.Event == "complete" {
			completed = true
			products = entry.Products
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading result log: %w", err)
	}

	if !completed {
		return nil, fmt.Errorf("result log %s records no completed run", logPath)
	}
	return products, nil
}
