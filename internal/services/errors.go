// Package services implements the business operations behind the HTTP
// handlers: dataset sessions with the cleaning pipeline, the inventory
// catalog, and health reporting.
package services

import "errors"

// Sentinel errors mapped to API errors at the transport layer.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrEmptyDataset    = errors.New("dataset is empty")
	ErrNoArtifact      = errors.New("no cleaned artifact for dataset")
	ErrNoProducts      = errors.New("no products in inventory")
	ErrProductInvalid  = errors.New("product failed validation")
	ErrBadFormat       = errors.New("unsupported export format")
)
