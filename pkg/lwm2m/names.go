package lwm2m

import "fmt"

var objectNames = map[ObjectID]string{
	ObjectSecurity:        "security",
	ObjectServer:          "server",
	ObjectAccessControl:   "accessControl",
	ObjectDevice:          "device",
	ObjectConnMonitor:     "connMonitor",
	ObjectFirmwareUpdate:  "firmwareUpdate",
	ObjectLocation:        "location",
	ObjectConnStats:       "connStats",
	ObjectSoftwareUpdate:  "softwareUpdate",
	ObjectSubscription:    "subscription",
	ObjectExtConnStats:    "extConnStats",
	ObjectSSLCertificates: "sslCertificates",
}

var resourceNames = map[ObjectID][]string{
	ObjectSecurity: {
		"serverURI", "bootstrapServer", "securityMode", "publicKeyOrIdentity",
		"serverPublicKey", "secretKey", "smsSecurityMode", "smsBindingKeyParams",
		"smsBindingSecretKeys", "serverSMSNumber", "shortServerID", "clientHoldOffTime",
	},
	ObjectServer: {
		"shortServerID", "lifetime", "defaultMinPeriod", "defaultMaxPeriod",
		"disable", "disableTimeout", "storeNotifWhenOffline", "binding",
		"regUpdateTrigger",
	},
	ObjectDevice: {
		"manufacturer", "modelNumber", "serialNumber", "firmwareVersion",
		"reboot", "factoryReset", "availPowerSources", "powerSourceVoltage",
		"powerSourceCurrent", "batteryLevel", "memoryFree", "errorCode",
		"resetErrorCode", "currentTime", "utcOffset", "timezone",
		"supportedBindings",
	},
	ObjectConnMonitor: {
		"networkBearer", "availableBearers", "radioSignalStrength", "linkQuality",
		"ipAddresses", "routerIPAddresses", "linkUtilization", "apn",
		"cellID", "smnc", "smcc",
	},
	ObjectFirmwareUpdate: {
		"package", "packageURI", "update", "state",
		"updateSupportedObjects", "updateResult", "packageName", "packageVersion",
		"protocolSupport", "deliveryMethod",
	},
	ObjectSoftwareUpdate: {
		"packageName", "packageVersion", "package", "packageURI",
		"install", "checkpoint", "uninstall", "updateState",
		"updateSupportedObjects", "updateResult", "activate", "deactivate",
		"activationState", "packageSettings", "userName", "password",
		"statusReason", "componentLink", "componentTreeLength",
	},
	ObjectSSLCertificates: {
		"certificate",
	},
}

// String returns the object name, or "object_<id>" when unknown.
func (o ObjectID) String() string {
	if name, ok := objectNames[o]; ok {
		return name
	}
	return fmt.Sprintf("object_%d", uint16(o))
}

// IsKnown reports whether the object ID is one of the managed objects.
func (o ObjectID) IsKnown() bool {
	_, ok := objectNames[o]
	return ok
}

// ObjectIDs returns all known object IDs in ascending order.
func ObjectIDs() []ObjectID {
	return []ObjectID{
		ObjectSecurity, ObjectServer, ObjectAccessControl, ObjectDevice,
		ObjectConnMonitor, ObjectFirmwareUpdate, ObjectLocation, ObjectConnStats,
		ObjectSoftwareUpdate, ObjectSubscription, ObjectExtConnStats, ObjectSSLCertificates,
	}
}

// ResourceName returns the name of a resource within an object,
// or "" when the resource is not known.
func ResourceName(oid ObjectID, rid uint16) string {
	names := resourceNames[oid]
	if int(rid) < len(names) {
		return names[rid]
	}
	return ""
}

// ResourceCount returns how many resource IDs are known for the object.
func ResourceCount(oid ObjectID) int {
	return len(resourceNames[oid])
}
