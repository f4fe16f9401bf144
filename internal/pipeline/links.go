// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"context"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ResolveLink returns the referenced key and the relation label of a link
// as seen from the issue that declares it. An inward reference wins.
func ResolveLink(link model.RawIssueLink) (key, label string, ok bool) {
	switch {
	case link.InwardIssue != nil && link.InwardIssue.Key != "":
		return link.InwardIssue.Key, link.Type.Inward, true
	case link.OutwardIssue != nil && link.OutwardIssue.Key != "":
		return link.OutwardIssue.Key, link.Type.Outward, true
	default:
		return "", "", false
	}
}

// fetchGroup coalesces concurrent fetches of the same key within one run.
type fetchGroup struct {
	expander Expander
	group    singleflight.Group
}

func newFetchGroup(expander Expander) *fetchGroup {
	return &fetchGroup{expander: expander}
}

func (f *fetchGroup) get(ctx context.Context, key string) (*model.RawIssue, error) {
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		issue, err := f.expander.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if issue == nil {
			return nil, errors.Errorf("empty record for %s", key)
		}
		return issue, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.RawIssue), nil
}

// expandLinks fetches every linked issue. Each link owns one result slot;
// failed fetches leave their slot empty and are dropped, keeping the
// declared order of the rest.
func (p *Pipeline) expandLinks(ctx context.Context, flight *fetchGroup, links []model.RawIssueLink) []model.LinkedIssue {
	slots := make([]*model.LinkedIssue, len(links))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := range links {
		key, label, ok := ResolveLink(links[i])
		if !ok {
			continue
		}
		i := i
		g.Go(func() error {
			raw, err := flight.get(ctx, key)
			if err != nil {
				mlog.Debug("Dropping linked issue", mlog.String("key", key), mlog.Err(err))
				if p.observer != nil {
					p.observer(key, err)
				}
				return nil
			}
			linked := mapLinkedIssue(key, raw, label)
			slots[i] = &linked
			return nil
		})
	}
	_ = g.Wait()

	linked := make([]model.LinkedIssue, 0, len(links))
	for _, slot := range slots {
		if slot != nil {
			linked = append(linked, *slot)
		}
	}
	return linked
}
