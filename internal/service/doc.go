// Package service contains the application-specific use cases of the
// vocabulary trainer. It orchestrates the domain packages (srs, session,
// textmatch) and the store interfaces defined in internal/store.
//
// Key components:
//
//  1. ProgressService: collection initialisation, reset, status counts,
//     daily statistics, settings, and JSON export/import of user data.
//  2. SessionService: the live study session of each user. It builds the
//     queue, grades answers, and publishes review-state writes as events so
//     the session never waits on the store.
//  3. WordService: read access to the shared word list and on-demand
//     enrichment.
//
// Services receive their dependencies through constructor injection and never
// depend on concrete store implementations.
package service
