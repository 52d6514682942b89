package scrollkeeper

import "sync"

// Keeping track of all Keeper instances by their name.
var registry *sync.Map = new(sync.Map)

// Register the Keeper to the registry if it's not yet created,
// else return the registered one.
func register(name string, keeper *Keeper) (k *Keeper, fresh bool) {
	val, loaded := registry.LoadOrStore(name, keeper)
	return val.(*Keeper), !loaded
}

// Deregister the Keeper of a given name.
func deregister(name string) {
	registry.Delete(name)
}
