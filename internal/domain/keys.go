package domain

// KeyPrefix namespaces every key the service writes to the datastore.
const KeyPrefix = "wayfarer:"
