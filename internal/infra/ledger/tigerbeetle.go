package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"sync"

	"concert-reservation/internal/domain/account"
	"concert-reservation/internal/pkg/config"
	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
	tb "github.com/tigerbeetle/tigerbeetle-go"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

const (
	codeCharge uint16 = 1
	codeDebit  uint16 = 2

	operatorLabel = "acct:operator"
)

// TigerBeetleLedger keeps wallets in TigerBeetle. Each account wallet carries
// DebitsMustNotExceedCredits, so an overdraft is refused by the ledger itself.
// Transfer ids derive from the reference, which makes replays idempotent.
type TigerBeetleLedger struct {
	client tb.Client
	ledger uint32
	logger *slog.Logger

	known sync.Map // uuid.UUID -> struct{}
}

func NewTigerBeetleClient(cfg config.PointsConfig) (tb.Client, error) {
	client, err := tb.NewClient(tbtypes.ToUint128(uint64(cfg.TigerBeetleCluster)), cfg.TigerBeetleAddrs)
	if err != nil {
		return nil, errs.Wrap(err, "create tigerbeetle client")
	}
	return client, nil
}

func NewTigerBeetleLedger(client tb.Client, cfg config.PointsConfig, logger *slog.Logger) *TigerBeetleLedger {
	return &TigerBeetleLedger{
		client: client,
		ledger: cfg.TigerBeetleLedger,
		logger: logger,
	}
}

func (l *TigerBeetleLedger) Debit(ctx context.Context, accountID uuid.UUID, reference string, amount int64) error {
	if err := account.ValidateAmount(amount); err != nil {
		return errs.Mark(err, errs.ErrInvalidArgument)
	}
	if err := l.ensureWallet(ctx, accountID); err != nil {
		return err
	}

	result, err := l.transfer(ctx, tbtypes.Transfer{
		ID:              id128(reference),
		DebitAccountID:  walletID(accountID),
		CreditAccountID: id128(operatorLabel),
		Amount:          tbtypes.ToUint128(uint64(amount)),
		Ledger:          l.ledger,
		Code:            codeDebit,
	})
	if err != nil {
		return err
	}
	switch result {
	case tbtypes.TransferOK, tbtypes.TransferExists:
		return nil
	case tbtypes.TransferExceedsCredits:
		return errs.Mark(
			errs.Wrapf(account.ErrInsufficientPoints, "debit %d from %s", amount, accountID),
			errs.ErrConflict,
		)
	default:
		return errs.Mark(errs.Newf("debit transfer rejected: %v", result), errs.ErrTransientFailure)
	}
}

func (l *TigerBeetleLedger) Charge(ctx context.Context, accountID uuid.UUID, reference string, amount int64) (int64, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return 0, errs.Mark(err, errs.ErrInvalidArgument)
	}
	if err := l.ensureWallet(ctx, accountID); err != nil {
		return 0, err
	}

	result, err := l.transfer(ctx, tbtypes.Transfer{
		ID:              id128(reference),
		DebitAccountID:  id128(operatorLabel),
		CreditAccountID: walletID(accountID),
		Amount:          tbtypes.ToUint128(uint64(amount)),
		Ledger:          l.ledger,
		Code:            codeCharge,
	})
	if err != nil {
		return 0, err
	}
	if result != tbtypes.TransferOK && result != tbtypes.TransferExists {
		return 0, errs.Mark(errs.Newf("charge transfer rejected: %v", result), errs.ErrTransientFailure)
	}
	return l.Balance(ctx, accountID)
}

func (l *TigerBeetleLedger) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	accounts, err := callWithContext(ctx, func() ([]tbtypes.Account, error) {
		return l.client.LookupAccounts([]tbtypes.Uint128{walletID(accountID)})
	})
	if err != nil {
		return 0, errs.Mark(errs.Wrap(err, "lookup wallet"), errs.ErrTransientFailure)
	}
	if len(accounts) == 0 {
		// wallets are created on first movement
		return 0, nil
	}
	credits := low64(accounts[0].CreditsPosted)
	debits := low64(accounts[0].DebitsPosted)
	if credits < debits {
		return 0, nil
	}
	// #nosec G115 -- balances are bounded by int64 charges
	return int64(credits - debits), nil
}

func (l *TigerBeetleLedger) ensureWallet(ctx context.Context, accountID uuid.UUID) error {
	if _, ok := l.known.Load(accountID); ok {
		return nil
	}

	results, err := callWithContext(ctx, func() ([]tbtypes.AccountEventResult, error) {
		return l.client.CreateAccounts([]tbtypes.Account{
			{
				ID:     id128(operatorLabel),
				Ledger: l.ledger,
				Code:   codeCharge,
			},
			{
				ID:     walletID(accountID),
				Ledger: l.ledger,
				Code:   codeCharge,
				Flags:  tbtypes.AccountFlags{DebitsMustNotExceedCredits: true}.ToUint16(),
			},
		})
	})
	if err != nil {
		return errs.Mark(errs.Wrap(err, "create wallet"), errs.ErrTransientFailure)
	}
	for _, r := range results {
		if r.Result != tbtypes.AccountExists {
			return errs.Mark(errs.Newf("create wallet: %v", r.Result), errs.ErrTransientFailure)
		}
	}

	l.known.Store(accountID, struct{}{})
	return nil
}

// transfer submits a single transfer. TigerBeetle only reports failures, so an
// empty result set means the transfer was created.
func (l *TigerBeetleLedger) transfer(ctx context.Context, t tbtypes.Transfer) (tbtypes.CreateTransferResult, error) {
	results, err := callWithContext(ctx, func() ([]tbtypes.TransferEventResult, error) {
		return l.client.CreateTransfers([]tbtypes.Transfer{t})
	})
	if err != nil {
		return 0, errs.Mark(errs.Wrap(err, "create transfer"), errs.ErrTransientFailure)
	}
	if len(results) == 0 {
		return tbtypes.TransferOK, nil
	}
	l.logger.Debug("transfer result", "code", t.Code, "result", results[0].Result)
	return results[0].Result, nil
}

func (l *TigerBeetleLedger) Close() {
	l.client.Close()
}

func walletID(accountID uuid.UUID) tbtypes.Uint128 {
	return id128("acct:" + accountID.String())
}

// id128 maps a label to a deterministic, non-zero id.
func id128(label string) tbtypes.Uint128 {
	sum := sha256.Sum256([]byte(label))
	var raw [16]byte
	copy(raw[:], sum[:16])
	if raw == [16]byte{} {
		raw[0] = 1
	}
	return tbtypes.BytesToUint128(raw)
}

func low64(v tbtypes.Uint128) uint64 {
	b := v.Bytes()
	return binary.LittleEndian.Uint64(b[:8])
}

func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		value, err := fn()
		ch <- result{value: value, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.value, res.err
	}
}
