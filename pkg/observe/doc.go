// Package observe implements the notification side of LwM2M observations.
//
// The registry stores observation attributes and each resource's last
// notified value. This package decides, from those, when a new value must be
// pushed to the observer.
//
// # Decision Order
//
// For an observed resource with current value v, last notified value c and
// time t since the last notification:
//
//   - cancel set on the resource or its object: never notify
//   - t < pmin: wait
//   - pmax set (and not below pmin) and t >= pmax: notify
//   - numeric resource with gt, lt or st set: notify when v crossed gt or lt
//     relative to c, or when |v-c| >= st
//   - otherwise: notify when v differs from c
//
// pmin and pmax come from the resource, else from its object, else from the
// manager's Config (typically the server object's default periods).
//
// # Manager
//
// Manager tracks active observations and is driven by Poll. A resource has a
// single cache, so it has at most one observation: observing it again
// refreshes that observation and sends a new initial notification. The
// initial notification is sent by Observe, never by Poll. Each poll reads
// every observed resource through the registry, evaluates it and, on notify,
// stores the value with UpdateCache and invokes the notification callback.
// The registry itself is not locked; callers serialize registry access.
package observe
