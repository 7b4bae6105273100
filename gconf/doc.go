/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package keeps at most one configuration object, stored under the
"_c:<pkg>" key. The object can be loaded from the genesis file "conf" section
and later updated by the owning extension.
*/
package gconf
