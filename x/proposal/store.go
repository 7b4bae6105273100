package proposal

import (
	"context"
	"time"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/orm"
)

const bucketName = "proposal"

// SignerChecker is implemented by the signer registry.
type SignerChecker interface {
	RequireSigner(db vault.ReadOnlyKVStore, p vault.Principal) error
}

// Store persists proposals keyed by their sequential ID.
type Store struct {
	bucket  orm.ModelBucket
	ids     orm.Sequence
	signers SignerChecker
}

// NewStore returns a store that only lets signers vote.
func NewStore(signers SignerChecker) *Store {
	return &Store{
		bucket:  orm.NewModelBucket(bucketName),
		ids:     orm.NewSequence(bucketName, "id"),
		signers: signers,
	}
}

// Propose stores a new proposal created by the caller of the context. The
// caller is its first approval. IDs start at zero and are never reused.
func (s *Store) Propose(ctx context.Context, db vault.KVStore, args Args) (*ProposedTransaction, error) {
	caller, err := s.caller(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}
	id, err := s.ids.Next(db)
	if err != nil {
		return nil, errors.Wrap(err, "proposal id")
	}
	created, ok := vault.RequestTime(ctx)
	if !ok {
		created = time.Now()
	}
	p := &ProposedTransaction{
		ID:        id,
		To:        args.To,
		Token:     args.Token,
		Network:   args.Network,
		Amount:    args.Amount,
		Kind:      args.Kind,
		Signers:   []vault.Principal{caller},
		CreatedAt: vault.AsUnixTime(created),
	}
	if err := s.bucket.Put(db, orm.EncodeSequence(id), p); err != nil {
		return nil, err
	}
	vault.GetLogger(ctx).Info("proposed", "id", id, "token", string(p.Token), "to", p.To, "amount", string(p.Amount))
	return p, nil
}

// Approve adds the caller to the approvals of the proposal.
func (s *Store) Approve(ctx context.Context, db vault.KVStore, id uint64) (*ProposedTransaction, error) {
	return s.vote(ctx, db, id, true)
}

// Reject adds the caller to the rejections of the proposal.
func (s *Store) Reject(ctx context.Context, db vault.KVStore, id uint64) (*ProposedTransaction, error) {
	return s.vote(ctx, db, id, false)
}

func (s *Store) vote(ctx context.Context, db vault.KVStore, id uint64, approve bool) (*ProposedTransaction, error) {
	caller, err := s.caller(ctx, db)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(db, id)
	if err != nil {
		return nil, err
	}
	if p.Executed {
		return nil, errors.Wrapf(errors.ErrState, "proposal %d already executed", id)
	}
	if p.HasVoted(caller) {
		return nil, errors.Wrap(errors.ErrState, "already voted")
	}
	if approve {
		p.Signers = append(p.Signers, caller)
	} else {
		p.Rejections = append(p.Rejections, caller)
	}
	if err := s.bucket.Put(db, orm.EncodeSequence(id), p); err != nil {
		return nil, err
	}
	vault.GetLogger(ctx).Debug("voted", "id", id, "approve", approve, "signer", caller.String())
	return p, nil
}

// Get returns the proposal or ErrNotFound.
func (s *Store) Get(db vault.ReadOnlyKVStore, id uint64) (*ProposedTransaction, error) {
	var p ProposedTransaction
	if err := s.bucket.One(db, orm.EncodeSequence(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all proposals ordered by ID.
func (s *Store) List(db vault.ReadOnlyKVStore) ([]ProposedTransaction, error) {
	var ps []ProposedTransaction
	if _, err := s.bucket.All(db, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// MarkExecuted flags the proposal as executed. An executed proposal accepts
// no further votes and cannot be executed again.
func (s *Store) MarkExecuted(db vault.KVStore, id uint64) error {
	p, err := s.Get(db, id)
	if err != nil {
		return err
	}
	if p.Executed {
		return errors.Wrapf(errors.ErrState, "proposal %d already executed", id)
	}
	p.Executed = true
	return s.bucket.Put(db, orm.EncodeSequence(id), p)
}

func (s *Store) caller(ctx context.Context, db vault.ReadOnlyKVStore) (vault.Principal, error) {
	caller, ok := vault.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	if err := s.signers.RequireSigner(db, caller); err != nil {
		return nil, err
	}
	return caller, nil
}
