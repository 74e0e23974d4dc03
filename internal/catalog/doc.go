// Package catalog loads the shop, guild buff and bank deposit tables from
// YAML. The default catalog is embedded; CATALOG_PATH replaces it.
package catalog
