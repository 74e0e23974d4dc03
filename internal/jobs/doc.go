// Package jobs implements background tasks that run beside the HTTP server.
//
// NameTagRefresher re-renders the name tag of every connected player on a
// fixed interval (NAMETAG_INTERVAL). Membership changes already refresh the
// affected players right away; the periodic pass picks up health changes the
// host reports in presence snapshots.
//
// Jobs log failures and keep running. Each has a RunOnce for tests and
// manual triggers:
//
//	refresher := jobs.NewNameTagRefresher(tagService, cfg.Jobs.NameTagInterval)
//	refresher.Start()
//	defer refresher.Stop()
package jobs
