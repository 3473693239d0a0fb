package lwm2m

// Protocol limits.
const (
	// BufferMaxLen is the largest CoAP payload buffer handed to a handler.
	BufferMaxLen = 1024

	// ServerURIMaxLen is the longest accepted server URI.
	ServerURIMaxLen = 255
)

// ObjectID identifies an LwM2M object type.
type ObjectID uint16

const (
	ObjectSecurity        ObjectID = 0
	ObjectServer          ObjectID = 1
	ObjectAccessControl   ObjectID = 2
	ObjectDevice          ObjectID = 3
	ObjectConnMonitor     ObjectID = 4
	ObjectFirmwareUpdate  ObjectID = 5
	ObjectLocation        ObjectID = 6
	ObjectConnStats       ObjectID = 7
	ObjectSoftwareUpdate  ObjectID = 9
	ObjectSubscription    ObjectID = 10241
	ObjectExtConnStats    ObjectID = 10242
	ObjectSSLCertificates ObjectID = 10243
)

// Security object (0) resources.
const (
	SecurityServerURI uint16 = iota
	SecurityBootstrapServer
	SecurityMode
	SecurityPublicKeyOrID
	SecurityServerPublicKey
	SecuritySecretKey
	SecuritySMSSecurityMode
	SecuritySMSBindingKeyParams
	SecuritySMSBindingSecretKeys
	SecurityServerSMSNumber
	SecurityShortServerID
	SecurityClientHoldOffTime
)

// Server object (1) resources.
const (
	ServerShortID uint16 = iota
	ServerLifetime
	ServerDefaultMinPeriod
	ServerDefaultMaxPeriod
	ServerDisable
	ServerDisableTimeout
	ServerStoreNotifWhenOffline
	ServerBinding
	ServerRegUpdateTrigger
)

// Device object (3) resources.
const (
	DeviceManufacturer uint16 = iota
	DeviceModelNumber
	DeviceSerialNumber
	DeviceFirmwareVersion
	DeviceReboot
	DeviceFactoryReset
	DeviceAvailPowerSources
	DevicePowerSourceVoltage
	DevicePowerSourceCurrent
	DeviceBatteryLevel
	DeviceMemoryFree
	DeviceErrorCode
	DeviceResetErrorCode
	DeviceCurrentTime
	DeviceUTCOffset
	DeviceTimezone
	DeviceSupportedBindings
)

// Connectivity monitoring object (4) resources.
const (
	ConnMonNetworkBearer uint16 = iota
	ConnMonAvailableBearers
	ConnMonRadioSignalStrength
	ConnMonLinkQuality
	ConnMonIPAddresses
	ConnMonRouterIPAddresses
	ConnMonLinkUtilization
	ConnMonAPN
	ConnMonCellID
	ConnMonSMNC
	ConnMonSMCC
)

// Firmware update object (5) resources.
const (
	FirmwarePackage uint16 = iota
	FirmwarePackageURI
	FirmwareUpdate
	FirmwareState
	FirmwareUpdateSupportedObjects
	FirmwareUpdateResult
	FirmwarePackageName
	FirmwarePackageVersion
	FirmwareProtocolSupport
	FirmwareDeliveryMethod
)

// Software update object (9) resources.
const (
	SoftwarePackageName uint16 = iota
	SoftwarePackageVersion
	SoftwarePackage
	SoftwarePackageURI
	SoftwareInstall
	SoftwareCheckpoint
	SoftwareUninstall
	SoftwareUpdateState
	SoftwareUpdateSupportedObjects
	SoftwareUpdateResult
	SoftwareActivate
	SoftwareDeactivate
	SoftwareActivationState
	SoftwarePackageSettings
	SoftwareUserName
	SoftwarePassword
	SoftwareStatusReason
	SoftwareComponentLink
	SoftwareComponentTreeLength
)

// SSL certificates object (10243) resources.
const (
	SSLCertificate uint16 = 0
)
