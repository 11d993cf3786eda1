// Package nexus implements the NexusMods retrieval pipeline.
//
// A run is two strictly sequential phases, each internally parallel:
//
//  1. Resolve: enumerate tracked mods with one request, fan out over mod ids
//     to list file ids, fan out over (mod, file) pairs to resolve signed
//     download URLs, then persist the resolved links to the bucket as a
//     line-oriented record.
//  2. Fetch: re-read the persisted record and transfer every file with the
//     retrying fetcher.
//
// Persisting between the phases decouples resolution from transfer, so a
// transfer run can be repeated without burning API quota on re-resolution.
// Metadata lookups fail soft: a mod whose file listing cannot be fetched
// simply contributes no download tasks, and only successfully resolved URLs
// are ever persisted.
package nexus
