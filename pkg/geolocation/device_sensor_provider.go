package geolocation

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// DeviceSensorProvider retrieves location data from a GPS device connected
// via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with
// the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
	}
}

// RequestPermission always succeeds: a local GPS sensor needs no runtime
// permission grant.
func (d *DeviceSensorProvider) RequestPermission() error {
	return nil
}

// ServicesEnabled checks that the serial port can be opened.
func (d *DeviceSensorProvider) ServicesEnabled() (bool, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrServicesDisabled, err)
	}
	s.Close()
	return true, nil
}

// CurrentPosition reads GPS data from the device and returns the current fix.
func (d *DeviceSensorProvider) CurrentPosition() (Position, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrServicesDisabled, err)
	}
	defer s.Close()

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "$GPGGA") { // Check for GGA sentences
			sentence, err := nmea.Parse(line)
			if err != nil {
				return Position{}, err
			}

			if gga, ok := sentence.(nmea.GGA); ok {
				return Position{
					Latitude:       gga.Latitude,
					Longitude:      gga.Longitude,
					AccuracyMeters: float64(gga.HDOP), // HDOP as a proxy for accuracy
				}, nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return Position{}, err
	}

	return Position{}, ErrNoFix
}

// Close is a no-op; the serial port is opened per query.
func (d *DeviceSensorProvider) Close() error {
	return nil
}
