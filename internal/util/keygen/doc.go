// Package keygen generates SSH key pairs for hypervisor guests.
//
// The public half is sent as ssh_key when creating Proxmox machines; the private
// half is written next to the operator's other keys.
package keygen
