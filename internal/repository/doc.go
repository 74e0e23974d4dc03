// Package repository persists the guild registry and player balances.
//
// # Registry storage
//
// The registry is one document, always read and written whole. A Slot is the
// raw cell it lives in; RegistryStore layers the codec and invariant checks
// on top:
//
//	store := repository.NewRegistryStore(repository.NewFileSlot("data/guilds.json", true))
//	reg, err := store.Load(ctx)
//	if errors.Is(err, model.ErrCorruptState) {
//	    // refuse writes until an operator repairs the document
//	}
//
// Slot implementations:
//
//   - MemorySlot: in-process, used by tests and single-node development
//   - FileSlot: a JSON file, optionally zstd compressed, replaced atomically
//   - SQLiteSlot: one row of a kv table
//   - RedisSlot: one string key, paired with RedisLocker for multi-process hosts
//   - SurrealSlot: one registry_slot record
//
// # Layout
//
// Documents are written as {"version":1,"guilds":{...}}. The unversioned
// layout (a bare name to record mapping) is still read and is rewritten in
// the current layout on the next save. Both layouts are checked against the
// JSON schemas embedded from schema/.
//
// # Ledger
//
// Ledger keeps money balances for the bank, shops and buffs. MemoryLedger
// and RedisLedger are provided.
package repository
