package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/store"
)

// Service resolves document IDs to their latest extractions and runs the
// 3-way match over them.
type Service struct {
	storage    *store.Storage
	tolerances Tolerances
	log        *logger.Logger
}

func NewService(storage *store.Storage, tolerances Tolerances, log *logger.Logger) *Service {
	return &Service{storage: storage, tolerances: tolerances, log: log}
}

// Input names the documents to match. Nil IDs mean the document is absent.
type Input struct {
	PODocumentID      *uuid.UUID
	BOLDocumentID     *uuid.UUID
	InvoiceDocumentID *uuid.UUID
	Tolerances        *Tolerances
}

// Match loads extractions for the provided document IDs and computes the
// 3-way match. A document whose extraction cannot be found is treated as
// absent, so the result degrades to incomplete rather than failing.
func (s *Service) Match(ctx context.Context, in Input) (Result, error) {
	const component = "ThreeWayMatch"

	po, err := s.loadDocument(ctx, in.PODocumentID, KindPurchaseOrder)
	if err != nil {
		return Result{}, err
	}
	bol, err := s.loadDocument(ctx, in.BOLDocumentID, KindBillOfLading)
	if err != nil {
		return Result{}, err
	}
	invoice, err := s.loadDocument(ctx, in.InvoiceDocumentID, KindCommercialInvoice)
	if err != nil {
		return Result{}, err
	}

	tol := s.tolerances
	if in.Tolerances != nil {
		tol = *in.Tolerances
	}

	result := ComputeThreeWayMatch(po, bol, invoice, tol)
	s.log.Info(component, "Match computed: status=%s confidence=%.3f fields=%d lines=%d",
		result.Status, result.OverallConfidence, len(result.FieldMatches), len(result.LineItemMatches))
	return result, nil
}

func (s *Service) loadDocument(ctx context.Context, documentID *uuid.UUID, kind DocumentKind) (*Document, error) {
	const component = "ThreeWayMatch"

	if documentID == nil {
		return nil, nil
	}

	ext, err := s.storage.Extractions.GetLatestByDocument(ctx, *documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn(component, "No extraction found for %s document %s", kind, documentID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s extraction: %w", kind, err)
	}

	var doc Document
	if err := json.Unmarshal(ext.Data, &doc); err != nil {
		return nil, fmt.Errorf("malformed %s extraction payload: %w", kind, err)
	}
	return &doc, nil
}
