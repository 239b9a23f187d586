package pipeline

import (
	"github.com/lucasjlepore/stepcadence"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// summaryParquetRow mirrors stepcadence.OutputColumns. Missing statistics are
// written as 0, like the CSV output.
type summaryParquetRow struct {
	UserID             string  `parquet:"name=Userid, type=BYTE_ARRAY, convertedtype=UTF8"`
	CountyCode         string  `parquet:"name=countyCode, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CensusArea         string  `parquet:"name=censusArea, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	AllDays            int64   `parquet:"name=All_Days, type=INT64"`
	WalkingDays        int64   `parquet:"name=Walking_Days, type=INT64"`
	ActiveDays         int64   `parquet:"name=Active_Days, type=INT64"`
	MedianAllSteps     float64 `parquet:"name=Median_All_Steps, type=DOUBLE"`
	MeanAllSteps       float64 `parquet:"name=Mean_All_Steps, type=DOUBLE"`
	MedianWalkingSteps float64 `parquet:"name=Median_Walking_Steps, type=DOUBLE"`
	MeanWalkingSteps   float64 `parquet:"name=Mean_Walking_Steps, type=DOUBLE"`
	MedianActiveSteps  float64 `parquet:"name=Median_Active_Steps, type=DOUBLE"`
	MeanActiveSteps    float64 `parquet:"name=Mean_Active_Steps, type=DOUBLE"`
}

func toParquetRow(r stepcadence.SummaryRow) summaryParquetRow {
	return summaryParquetRow{
		UserID:             r.UserID,
		CountyCode:         r.Region.CountyCode,
		CensusArea:         r.Region.CensusArea,
		AllDays:            int64(r.Days(stepcadence.CategoryAll)),
		WalkingDays:        int64(r.Days(stepcadence.CategoryWalking)),
		ActiveDays:         int64(r.Days(stepcadence.CategoryActive)),
		MedianAllSteps:     r.Median(stepcadence.CategoryAll),
		MeanAllSteps:       r.Mean(stepcadence.CategoryAll),
		MedianWalkingSteps: r.Median(stepcadence.CategoryWalking),
		MeanWalkingSteps:   r.Mean(stepcadence.CategoryWalking),
		MedianActiveSteps:  r.Median(stepcadence.CategoryActive),
		MeanActiveSteps:    r.Mean(stepcadence.CategoryActive),
	}
}

func marshalSummaryParquet(rows []stepcadence.SummaryRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(summaryParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
