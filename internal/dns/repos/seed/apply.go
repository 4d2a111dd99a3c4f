package seed

import (
	"errors"
	"fmt"

	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// Registry is the subset of the anchor registry the seeder drives.
type Registry interface {
	Owner() domain.Address
	SetIPFS(caller domain.Address, name, cid string, lockAfter bool) error
	IsLocked(name string) (bool, error)
	LookupIPFS(name string) (string, bool, error)
}

// Result counts what Apply did.
type Result struct {
	Applied int
	Skipped int
	Failed  int
}

// Apply publishes every anchor as the current owner, one apex group at a
// time. Locked names already carrying the desired CID are skipped; any other
// locked name is a conflict. Failures do not stop the run and are returned
// joined.
func Apply(reg Registry, anchors []Anchor, logger log.Logger) (Result, error) {
	var res Result
	if len(anchors) == 0 {
		return res, errEmptySeed
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	for _, name := range Duplicates(anchors) {
		logger.Warn(map[string]any{"name": name}, "seed lists name more than once, last entry wins")
	}

	owner := reg.Owner()
	groups := GroupByApex(anchors)
	var errs []error
	for _, apex := range sortedApexes(groups) {
		for _, a := range groups[apex] {
			skipped, err := applyOne(reg, owner, a)
			switch {
			case err != nil:
				res.Failed++
				errs = append(errs, fmt.Errorf("seed %s: %w", a.Name, err))
				logger.Error(map[string]any{"name": a.Name, "apex": apex, "error": err.Error()}, "seed anchor failed")
			case skipped:
				res.Skipped++
				logger.Debug(map[string]any{"name": a.Name, "apex": apex}, "seed anchor already locked in place")
			default:
				res.Applied++
			}
		}
	}
	logger.Info(map[string]any{
		"applied": res.Applied,
		"skipped": res.Skipped,
		"failed":  res.Failed,
		"zones":   len(groups),
	}, "seed applied")
	return res, errors.Join(errs...)
}

func applyOne(reg Registry, owner domain.Address, a Anchor) (bool, error) {
	locked, err := reg.IsLocked(a.Name)
	if err != nil {
		return false, err
	}
	if locked {
		cid, found, err := reg.LookupIPFS(a.Name)
		if err != nil {
			return false, err
		}
		if found && cid == a.CID {
			return true, nil
		}
		return false, fmt.Errorf("%w: holds %q", domain.ErrLockedName, cid)
	}
	return false, reg.SetIPFS(owner, a.Name, a.CID, a.Lock)
}
