package workflow

import (
	"context"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/storage"
	"go.uber.org/zap"
)

// LiquidationProcessor handles the settlement of approved expenses: it
// validates proof files, writes them to disk, and drives the terminal
// workflow transition. Files written for a transition that later fails are
// removed on a best-effort basis.
type LiquidationProcessor struct {
	engine  *Engine
	files   storage.FileStorage
	folders *storage.FolderManager
	pdfs    *storage.PDFValidator
	logger  *zap.Logger
}

// NewLiquidationProcessor creates a new liquidation processor.
func NewLiquidationProcessor(
	engine *Engine,
	files storage.FileStorage,
	folders *storage.FolderManager,
	pdfs *storage.PDFValidator,
	logger *zap.Logger,
) *LiquidationProcessor {
	return &LiquidationProcessor{
		engine:  engine,
		files:   files,
		folders: folders,
		pdfs:    pdfs,
		logger:  logger,
	}
}

// Settle liquidates an approved expense with the given proof files. At least
// one proof is required; every file is validated before anything is stored,
// so a bad file in the batch rejects the whole settlement.
func (p *LiquidationProcessor) Settle(
	ctx context.Context,
	expenseID int64,
	actor models.ActingUser,
	settlementDate string,
	proofs []*models.ProofFile,
) (*models.Expense, error) {
	if len(proofs) == 0 {
		return nil, fmt.Errorf("%w: settlement requires at least one proof file", ErrValidation)
	}
	if err := p.validateProofs(proofs); err != nil {
		return nil, err
	}

	attachments, paths, err := p.storeProofs(ctx, expenseID, proofs)
	if err != nil {
		return nil, err
	}

	expense, err := p.engine.Settle(ctx, expenseID, actor, settlementDate, attachments)
	if err != nil {
		p.cleanup(paths)
		return nil, err
	}
	return expense, nil
}

// AddProofs appends further proof files to an already settled expense.
func (p *LiquidationProcessor) AddProofs(
	ctx context.Context,
	expenseID int64,
	proofs []*models.ProofFile,
) (*models.Expense, error) {
	if len(proofs) == 0 {
		return nil, fmt.Errorf("%w: no proof files supplied", ErrValidation)
	}
	if err := p.validateProofs(proofs); err != nil {
		return nil, err
	}

	attachments, paths, err := p.storeProofs(ctx, expenseID, proofs)
	if err != nil {
		return nil, err
	}

	expense, err := p.engine.AddSettlementProof(ctx, expenseID, attachments)
	if err != nil {
		p.cleanup(paths)
		return nil, err
	}
	return expense, nil
}

func (p *LiquidationProcessor) validateProofs(proofs []*models.ProofFile) error {
	for _, proof := range proofs {
		if proof.FileName == "" {
			return fmt.Errorf("%w: proof file has no name", ErrValidation)
		}
		if len(proof.Content) == 0 {
			return fmt.Errorf("%w: proof file %s is empty", ErrAttachment, proof.FileName)
		}
		if err := p.pdfs.Validate(proof.FileName, proof.ContentType, proof.Content); err != nil {
			return fmt.Errorf("%w: %v", ErrAttachment, err)
		}
	}
	return nil
}

// storeProofs writes proof files under the expense folder and returns the
// attachment rows to persist plus the written paths for rollback.
func (p *LiquidationProcessor) storeProofs(ctx context.Context, expenseID int64, proofs []*models.ProofFile) ([]*models.Attachment, []string, error) {
	expense, err := p.engine.expenses.GetByID(expenseID)
	if err != nil {
		return nil, nil, err
	}
	if expense == nil {
		return nil, nil, fmt.Errorf("%w: expense %d", ErrNotFound, expenseID)
	}

	folder := p.folders.ExpenseFolderName(expense.NumeroCI)
	if _, err := p.folders.CreateExpenseFolder(expense.NumeroCI); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAttachment, err)
	}

	attachments := make([]*models.Attachment, 0, len(proofs))
	paths := make([]string, 0, len(proofs))
	for _, proof := range proofs {
		name := p.folders.SanitizeFileName(proof.FileName)
		ref, path, err := p.files.Save(folder, name, proof.Content)
		if err != nil {
			p.cleanup(paths)
			return nil, nil, fmt.Errorf("%w: %v", ErrAttachment, err)
		}
		attachments = append(attachments, &models.Attachment{
			ExpenseID:   expenseID,
			Purpose:     models.PurposeSettlementProof,
			FileName:    name,
			ContentType: proof.ContentType,
			StorageRef:  ref,
			FilePath:    path,
			SizeBytes:   int64(len(proof.Content)),
		})
		paths = append(paths, path)
	}
	return attachments, paths, nil
}

func (p *LiquidationProcessor) cleanup(paths []string) {
	for _, path := range paths {
		if err := p.files.Remove(path); err != nil {
			p.logger.Warn("Failed to remove orphaned proof file",
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
