package distribution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// ReconcileUseCase orquesta la aceptación/rechazo de lotes de distribución y la
// cancelación de líneas pendientes. Orden fijo de fases en la aceptación:
// primero resolución de entidades + stock (una tx por producto, idempotente),
// después la transición de estado de todo el lote en una sola tx con CAS sobre
// status. Así un crash entre fases deja el lote pendiente y reintetable, nunca
// aceptado sin stock.
type ReconcileUseCase struct {
	txRunner          TxRunner
	distRepo          repository.DistributionRepository
	resolver          EntityResolver
	ledger            StockLedger
	audit             *AuditEmitter
	warehouseTenantID string // tenant centinela de la bodega principal (config)
	log               *logger.Logger
}

// NewReconcileUseCase construye el orquestador. warehouseTenantID es el tenant
// de la bodega principal, resuelto una sola vez desde configuración.
func NewReconcileUseCase(
	txRunner TxRunner,
	distRepo repository.DistributionRepository,
	audit *AuditEmitter,
	warehouseTenantID string,
	log *logger.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:          txRunner,
		distRepo:          distRepo,
		audit:             audit,
		warehouseTenantID: warehouseTenantID,
		log:               log,
	}
}

// BatchResult resultado de aceptar o rechazar un lote.
type BatchResult struct {
	BatchID string
	Count   int
}

// productGroup agrega las líneas de un mismo producto origen dentro del lote.
// El orquestador nunca aplica stock línea por línea: una sola llamada al libro
// por producto distinto, con la cantidad agregada.
type productGroup struct {
	productID   string
	quantity    decimal.Decimal
	amount      decimal.Decimal
	referenceID string // menor ID de línea del grupo: estable entre reintentos
}

// AcceptBatch acepta el lote completo referenciado por ref en nombre de actor.
// reason es opcional y se anexa a las notas de cada línea.
func (uc *ReconcileUseCase) AcceptBatch(ctx context.Context, ref BatchRef, actor entity.Actor, reason string, meta RequestMeta) (*BatchResult, error) {
	strategy, err := strategyFor(uc.distRepo, ref)
	if err != nil {
		return nil, err
	}
	batch, err := strategy.Pending(uc.distRepo)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, domain.ErrAlreadyProcessed
	}
	if err := uc.authorize(batch, actor); err != nil {
		return nil, err
	}

	destinationTenantID := batch[0].DestinationTenantID
	groups := groupByProduct(batch)
	now := time.Now()

	// Fase 1: resolución de entidades + incremento de stock, una tx por
	// producto, en orden determinista por productID para que dos lotes que
	// compartan productos tomen los bloqueos en el mismo orden.
	for _, g := range groups {
		if err := uc.applyProductGroup(ctx, g, destinationTenantID, actor, now); err != nil {
			return nil, err
		}
	}

	// Fase 2: transición de estado de todo el lote en una sola transacción.
	// El CAS sobre status = pending decide al ganador entre llamadas concurrentes.
	ids := lineIDs(batch)
	err = uc.txRunner.Run(ctx, func(
		distRepo repository.DistributionRepository,
		_ repository.ProductRepository,
		_ repository.CategoryRepository,
		_ repository.SupplierRepository,
		_ repository.StockMovementRepository,
	) error {
		affected, err := distRepo.TransitionStatus(ids, entity.DistributionStatusAccepted, notesFor("aceptada", actor, reason), now)
		if err != nil {
			return err
		}
		if affected != int64(len(ids)) {
			return domain.ErrConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Perdimos la carrera: el ganador ya transicionó. El stock que
			// aplicamos es idéntico al suyo (libro idempotente por referencia).
			uc.log.Warn().
				Str("batch_id", strategy.BatchID()).
				Str("actor_id", actor.ID).
				Msg("aceptación concurrente: lote ya procesado")
			return nil, domain.ErrAlreadyProcessed
		}
		// El stock quedó aplicado y el lote sigue pendiente. Reintentable: el
		// libro absorbe la repetición. Se deja rastro para reconciliación manual.
		uc.log.Error().Err(err).
			Str("batch_id", strategy.BatchID()).
			Int("lines", len(ids)).
			Msg("transición de estado falló tras aplicar stock; lote sigue pendiente")
		return nil, err
	}

	uc.audit.Emit(ctx, destinationTenantID, actor, entity.AuditActionAcceptBatch, strategy.BatchID(), batchAuditPayload{
		BatchID:  strategy.BatchID(),
		Count:    len(batch),
		Reason:   reason,
		LineIDs:  ids,
		Quantity: sumQuantities(batch).String(),
		Amount:   sumAmounts(batch).String(),
	}, meta)

	return &BatchResult{BatchID: strategy.BatchID(), Count: len(batch)}, nil
}

// RejectBatch rechaza el lote completo. No toca resolución de entidades ni
// stock: solo la transición de estado y la auditoría.
func (uc *ReconcileUseCase) RejectBatch(ctx context.Context, ref BatchRef, actor entity.Actor, reason string, meta RequestMeta) (*BatchResult, error) {
	strategy, err := strategyFor(uc.distRepo, ref)
	if err != nil {
		return nil, err
	}
	batch, err := strategy.Pending(uc.distRepo)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, domain.ErrAlreadyProcessed
	}
	if err := uc.authorize(batch, actor); err != nil {
		return nil, err
	}

	ids := lineIDs(batch)
	now := time.Now()
	err = uc.txRunner.Run(ctx, func(
		distRepo repository.DistributionRepository,
		_ repository.ProductRepository,
		_ repository.CategoryRepository,
		_ repository.SupplierRepository,
		_ repository.StockMovementRepository,
	) error {
		affected, err := distRepo.TransitionStatus(ids, entity.DistributionStatusRejected, notesFor("rechazada", actor, reason), now)
		if err != nil {
			return err
		}
		if affected != int64(len(ids)) {
			return domain.ErrConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Warn().
				Str("batch_id", strategy.BatchID()).
				Str("actor_id", actor.ID).
				Msg("rechazo concurrente: lote ya procesado")
			return nil, domain.ErrAlreadyProcessed
		}
		return nil, err
	}

	uc.audit.Emit(ctx, batch[0].DestinationTenantID, actor, entity.AuditActionRejectBatch, strategy.BatchID(), batchAuditPayload{
		BatchID:  strategy.BatchID(),
		Count:    len(batch),
		Reason:   reason,
		LineIDs:  ids,
		Quantity: sumQuantities(batch).String(),
		Amount:   sumAmounts(batch).String(),
	}, meta)

	return &BatchResult{BatchID: strategy.BatchID(), Count: len(batch)}, nil
}

// CancelPending cancela una línea aún pendiente: borra el registro y devuelve
// la cantidad al stock de la bodega principal, todo en una transacción. Es el
// único camino de vuelta a "no pasó nada". Solo un admin de la bodega puede
// cancelarla; una línea terminal devuelve "ya procesado".
func (uc *ReconcileUseCase) CancelPending(ctx context.Context, distributionID string, actor entity.Actor, meta RequestMeta) error {
	if distributionID == "" {
		return domain.ErrInvalidInput
	}
	if !actor.IsAdminOf(uc.warehouseTenantID) {
		return domain.ErrForbidden
	}
	dist, err := uc.distRepo.GetByID(distributionID)
	if err != nil {
		return err
	}
	if dist == nil {
		return domain.ErrNotFound
	}
	if !dist.IsPending() {
		return domain.ErrAlreadyProcessed
	}

	now := time.Now()
	err = uc.txRunner.Run(ctx, func(
		distRepo repository.DistributionRepository,
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
		_ repository.SupplierRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// El DELETE con guarda de status es el CAS: si otra llamada la procesó
		// entre la lectura y aquí, no borramos nada y no restauramos nada.
		deleted, err := distRepo.DeletePending(distributionID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrAlreadyProcessed
		}
		_, err = uc.ledger.ApplyIncrease(productRepo, movRepo, IncreaseInput{
			TenantID:    dist.SourceTenantID,
			ProductID:   dist.ProductID,
			Quantity:    dist.Quantity,
			Reason:      entity.MovementReasonCancelRestore,
			ReferenceID: dist.ID,
			ActorID:     actor.ID,
		}, now)
		return err
	})
	if err != nil {
		return err
	}

	uc.audit.Emit(ctx, uc.warehouseTenantID, actor, entity.AuditActionCancel, dist.ID, batchAuditPayload{
		BatchID:  dist.InvoiceNumber,
		Count:    1,
		LineIDs:  []string{dist.ID},
		Quantity: dist.Quantity.String(),
		Amount:   dist.TotalAmount.String(),
	}, meta)

	return nil
}

// applyProductGroup resuelve categoría → proveedor → producto en el tenant
// destino y aplica el incremento agregado del grupo, en una transacción propia.
func (uc *ReconcileUseCase) applyProductGroup(ctx context.Context, g productGroup, destinationTenantID string, actor entity.Actor, now time.Time) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.DistributionRepository,
		productRepo repository.ProductRepository,
		categoryRepo repository.CategoryRepository,
		supplierRepo repository.SupplierRepository,
		movRepo repository.StockMovementRepository,
	) error {
		source, err := productRepo.GetByID(g.productID)
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("producto origen %s: %w", g.productID, domain.ErrNotFound)
		}
		destProduct, err := uc.resolver.ResolveProduct(categoryRepo, supplierRepo, productRepo, source, destinationTenantID, now)
		if err != nil {
			return err
		}
		_, err = uc.ledger.ApplyIncrease(productRepo, movRepo, IncreaseInput{
			TenantID:    destinationTenantID,
			ProductID:   destProduct.ID,
			Quantity:    g.quantity,
			Reason:      entity.MovementReasonDistributionIn,
			ReferenceID: g.referenceID,
			ActorID:     actor.ID,
		}, now)
		return err
	})
}

// authorize revalida el contrato de autorización: actor admin del tenant
// destino de todas las líneas, y origen igual a la bodega principal.
func (uc *ReconcileUseCase) authorize(batch []*entity.Distribution, actor entity.Actor) error {
	for _, d := range batch {
		if !actor.IsAdminOf(d.DestinationTenantID) {
			return domain.ErrForbidden
		}
		if d.SourceTenantID != uc.warehouseTenantID {
			return fmt.Errorf("línea %s con origen %s distinto a la bodega principal: %w",
				d.ID, d.SourceTenantID, domain.ErrInvalidInput)
		}
	}
	return nil
}

// groupByProduct agrega las líneas por producto origen y ordena por productID.
// La referencia del grupo es el menor ID de línea: determinista y estable
// entre reintentos, clave de idempotencia del libro.
func groupByProduct(batch []*entity.Distribution) []productGroup {
	byProduct := make(map[string]*productGroup)
	for _, d := range batch {
		g, ok := byProduct[d.ProductID]
		if !ok {
			g = &productGroup{
				productID:   d.ProductID,
				quantity:    decimal.Zero,
				amount:      decimal.Zero,
				referenceID: d.ID,
			}
			byProduct[d.ProductID] = g
		}
		g.quantity = g.quantity.Add(d.Quantity)
		g.amount = g.amount.Add(d.TotalAmount)
		if d.ID < g.referenceID {
			g.referenceID = d.ID
		}
	}
	groups := make([]productGroup, 0, len(byProduct))
	for _, g := range byProduct {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].productID < groups[j].productID })
	return groups
}

func lineIDs(batch []*entity.Distribution) []string {
	ids := make([]string, 0, len(batch))
	for _, d := range batch {
		ids = append(ids, d.ID)
	}
	return ids
}

func sumQuantities(batch []*entity.Distribution) decimal.Decimal {
	total := decimal.Zero
	for _, d := range batch {
		total = total.Add(d.Quantity)
	}
	return total
}

func sumAmounts(batch []*entity.Distribution) decimal.Decimal {
	total := decimal.Zero
	for _, d := range batch {
		total = total.Add(d.TotalAmount)
	}
	return total
}

// notesFor arma la nota anexada en la transición; vacío si no hay razón.
func notesFor(verb string, actor entity.Actor, reason string) string {
	if reason == "" {
		return ""
	}
	return fmt.Sprintf("[%s por %s] %s", verb, actor.ID, reason)
}
