// Package examples provides reference object implementations demonstrating
// how to build an LwM2M client on top of the lwm2mcore registry.
//
// The example implementations show:
//   - Instantiating objects from their definitions with objdef
//   - Backing resources with read, write and execute handlers
//   - Multi-instance resources and dynamically created object instances
//   - Feeding server defaults into the observation manager
//
// Available examples:
//   - Server: a server account with default observation periods
//   - Device: device information, power sources and reboot
//   - Firmware: firmware update with package digest verification
//   - SoftwareUpdate: software packages installed on demand
//
// These examples can serve as templates for building real client objects.
package examples
