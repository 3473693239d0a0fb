// Package lwm2m defines the identifiers of the LwM2M objects and resources
// managed by the agent, along with protocol-wide limits.
//
// Object IDs 0-9 are OMA standard objects. IDs 10241-10243 are vendor
// extensions for subscription, extended connectivity statistics and SSL
// certificates.
package lwm2m
